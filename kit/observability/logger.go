package observability

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type Logger struct {
	l *log.Logger
}

func NewLogger() *Logger {
	return &Logger{l: log.New(os.Stdout, "", log.LstdFlags|log.LUTC)}
}

func (lg *Logger) Info(msg string, kv ...any) {
	lg.l.Println("INFO", msg, render(kv))
}

func (lg *Logger) Warn(msg string, kv ...any) {
	lg.l.Println("WARN", msg, render(kv))
}

func (lg *Logger) Error(msg string, kv ...any) {
	lg.l.Println("ERROR", msg, render(kv))
}

// render flattens kv pairs as key=value so lines grep the same way as the
// rest of the codebase's log.Printf calls. An odd trailing key is kept as-is.
func render(kv []any) string {
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if i+1 >= len(kv) {
			fmt.Fprintf(&b, "%v", kv[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
