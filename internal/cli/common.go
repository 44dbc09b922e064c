package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// Version information for all CLI tools
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-19"
	CommitSHA = "unknown" // Will be set during build
)

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion prints version information in a consistent format
func PrintVersion(toolName string, jsonOutput bool) {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err == nil {
			fmt.Println(string(data))
			return
		}
		fmt.Fprintf(os.Stderr, "Error: Failed to marshal version info to JSON: %v\n", err)
	}

	fmt.Printf("%s v%s\n", toolName, info.Version)
	fmt.Printf("Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Printf("Commit: %s\n", info.CommitSHA)
	}
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s/%s\n", info.Platform, info.Arch)
}

// ExitWithCode exits with the specified code and optional message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	os.Exit(code)
}

// Logger provides leveled logging for CLI tools
type Logger struct {
	Verbose   bool
	DebugMode bool
	// Quiet suppresses warnings; errors are always printed.
	Quiet bool

	out io.Writer
	now func() time.Time
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(verbose, debug bool) *Logger {
	return &Logger{
		Verbose:   verbose,
		DebugMode: debug,
		out:       os.Stdout,
		now:       time.Now,
	}
}

// NewLevelLogger creates a logger for one of the levels error, warn, info
// or debug, writing to out.
func NewLevelLogger(level string, out io.Writer) *Logger {
	l := NewLogger(false, false)
	l.out = out

	switch strings.ToLower(level) {
	case "error":
		l.Quiet = true
	case "info":
		l.Verbose = true
	case "debug":
		l.Verbose = true
		l.DebugMode = true
	}

	return l
}

func (l *Logger) log(tag, format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[%s] %s: %s\n", tag, l.now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		l.log("INFO", format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.log("DEBUG", format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if !l.Quiet {
		l.log("WARN", format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

// Std returns a standard library logger whose lines are emitted as
// warnings, for packages that take a *log.Logger.
func (l *Logger) Std() *log.Logger {
	return log.New(warnWriter{l}, "", 0)
}

type warnWriter struct{ l *Logger }

func (w warnWriter) Write(p []byte) (int, error) {
	w.l.Warn("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// CommandInfo represents information about a CLI command
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
	Examples    []string
	Flags       []FlagInfo
}

// FlagInfo represents information about a command flag
type FlagInfo struct {
	Name    string
	Usage   string
	Default string
}

// FlagsOf describes the flags defined on fs in lexical order. Boolean
// flags that default to off have no default listed.
func FlagsOf(fs *flag.FlagSet) []FlagInfo {
	var out []FlagInfo
	fs.VisitAll(func(f *flag.Flag) {
		info := FlagInfo{Name: f.Name, Usage: f.Usage, Default: f.DefValue}
		if info.Default == "false" || info.Default == "0" {
			info.Default = ""
		}
		out = append(out, info)
	})

	return out
}

// PrintCommandUsage prints usage for a specific command
func PrintCommandUsage(w io.Writer, tool string, cmd CommandInfo) {
	fmt.Fprintf(w, "%s %s - %s\n\n", tool, cmd.Name, cmd.Description)
	fmt.Fprintf(w, "USAGE:\n")
	fmt.Fprintf(w, "    %s\n\n", cmd.Usage)

	if len(cmd.Flags) > 0 {
		fmt.Fprintf(w, "OPTIONS:\n")
		for _, f := range cmd.Flags {
			fmt.Fprintf(w, "%-20s %s\n", "    -"+f.Name, f.Usage)
			if f.Default != "" {
				fmt.Fprintf(w, "%-20s Default: %s\n", "", f.Default)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if len(cmd.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range cmd.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
		fmt.Fprintf(w, "\n")
	}
}

// ValidateArgs validates command line arguments
func ValidateArgs(args []string, minArgs int, usage string) error {
	if len(args) < minArgs {
		return fmt.Errorf("insufficient arguments\nUsage: %s", usage)
	}
	return nil
}

// HandleError handles errors in a consistent way
func HandleError(err error, logger *Logger) {
	if err != nil {
		if logger != nil {
			logger.Error("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
