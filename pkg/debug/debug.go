// Package debug builds the console logger of the command line tool: a zerolog console
// writer fed by hooks that stamp a millisecond time and a package:file:line caller.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const DefaultTimeFormat = "15:04:05.000"

type LoggerOptions struct {
	// Debug lowers the level to debug
	Debug bool

	// Color enables coloured level, caller and time fields
	Color bool

	// TimeFormat overrides DefaultTimeFormat
	TimeFormat string

	// Now is used by the time hook; nil means time.Now
	Now func() time.Time
}

// NewLogger returns a console logger writing to w
func NewLogger(w io.Writer, opts LoggerOptions) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	asString := func(i interface{}) string {
		if i == nil {
			return ""
		}
		return fmt.Sprint(i)
	}

	cw := zerolog.ConsoleWriter{
		Out:             w,
		NoColor:         !opts.Color,
		PartsOrder:      []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.CallerFieldName, zerolog.MessageFieldName},
		FormatTimestamp: asString,
		FormatCaller:    asString,
	}

	logger := zerolog.New(cw).Level(level).
		Hook(TimeHook{Format: opts.TimeFormat, Now: opts.Now})
	if opts.Debug {
		logger = logger.Hook(CallerHook{WithColor: opts.Color})
	}
	return logger
}

func hackGetCallerSkipFrameCount(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")

	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}

	return 0
}

// TimeHook stamps every event with a preformatted time string
type TimeHook struct {
	Format string
	Now    func() time.Time
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	format := t.Format
	if format == "" {
		format = DefaultTimeFormat
	}
	e.Str(zerolog.TimestampFieldName, now().Format(format))
}

// CallerHook stamps every event with the package, file and line that logged it
type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(hackGetCallerSkipFrameCount(e) + 3)
	if !ok {
		return
	}

	funcd := runtime.FuncForPC(pc)
	if funcd == nil {
		return
	}

	pkg, _ := GetPackageAndFuncFromFuncName(funcd.Name())

	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, file, line, c.WithColor))
}

// GetPackageAndFuncFromFuncName splits a runtime function name such as
// "github.com/x/y/pkg.(*T).Method" into its package path and function
func GetPackageAndFuncFromFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(name[lastSlash:], '.')
	if firstDot < 0 {
		return name, ""
	}
	firstDot += lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		splt := strings.SplitN(pkg, ".(", 2)
		pkg = splt[0]
		function = "(" + splt[1] + "." + function
	}

	return pkg, function
}

// FormatCaller renders pkg:file:line, with the file in bold and the line in red when
// colorize is set
func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
