package logger

import (
	"io"
	"log"
	"os"
)

var (
	// Default logger writes to stderr; stdout belongs to the LSP transport.
	std = log.New(os.Stderr, "[cfndt] ", log.LstdFlags)
)

func SetOutput(output io.Writer) {
	std.SetOutput(output)
}

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Println(v ...interface{}) {
	std.Println(v...)
}

func Fatal(v ...interface{}) {
	std.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}
