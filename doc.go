/*
Package adb wraps the Android Debug Bridge (adb) command-line binary.

Every operation builds an argument list, spawns the binary as a child
process, captures its output streams and exit status, and maps failures to
Go error values. The package owns no device communication itself; all of
that is the binary's job.

WARNING This library is under heavy development, and its API is likely to
change without notice. Use versioning!

See README for more information. Use `go doc` or godoc.org for documentation.
*/
package adb
