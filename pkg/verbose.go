package dircachededup

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

var globalVerboseLevel int
var debugFlags map[string]bool

// Output streams. Progress and phase lines go to stdout, everything an
// operator has to act on goes to stderr.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects progress and diagnostic output. Nil leaves a stream unchanged.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// SetVerboseLevel sets the global verbose level
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	fmt.Fprintf(stderr, "[TRACE] Entering function: %s\n", funcName)

	return func() {
		fmt.Fprintf(stderr, "[TRACE] Exiting function: %s\n", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel >= level {
		fmt.Fprintf(stderr, "[VERBOSE-%d] ", level)
		fmt.Fprintf(stderr, format, args...)
		if !strings.HasSuffix(format, "\n") {
			fmt.Fprintf(stderr, "\n")
		}
	}
}

// Progressf writes an operator-facing progress line to stdout
func Progressf(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(stdout, "\n")
	}
}

// Warnf writes a non-fatal warning to stderr
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "Warning: "+format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(stderr, "\n")
	}
}

// Errorf writes a non-fatal error to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "Error: "+format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(stderr, "\n")
	}
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("scan,reconcile") and key:value format ("scan:true,index:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				flagValue = false
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}
