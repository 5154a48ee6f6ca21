package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	contextPkg "ShortletAssistant/pkg/context"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

const RequestIDKey = "request_id"

type Fields = logrus.Fields

// NewLogger returns the process-wide logger. Outside APP_ENV=test it also
// writes to a rotating file under LOG_DIR (default ./storage/logs).
func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        os.Getenv("LOG_NO_COLOR") == "true",
			TimestampFormat: "02 Jan 06 - 15:04",
			CallerFirst:     true,
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, s[len(s)-1])
			},
		})

		writers := []io.Writer{os.Stderr}
		if os.Getenv("APP_ENV") != "test" {
			dir := os.Getenv("LOG_DIR")
			if dir == "" {
				dir = "./storage/logs"
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   fmt.Sprintf("%s/assistant-%s.log", dir, time.Now().Format("2006-01-02")),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100,
				MaxAge:     7,
				MaxBackups: 3,
			})
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

func entry(fields Fields) *logrus.Entry {
	if fields == nil {
		fields = Fields{}
	}
	return NewLogger().WithFields(fields)
}

func Debug(fields Fields, msg string) { entry(fields).Debug(msg) }

func Info(fields Fields, msg string) { entry(fields).Info(msg) }

func Warn(fields Fields, msg string) { entry(fields).Warn(msg) }

func Error(fields Fields, msg string) { entry(fields).Error(msg) }

func Fatal(fields Fields, msg string) { entry(fields).Fatal(msg) }

// ErrorWithTraceID logs msg and returns the id a client can quote back. The
// request id is reused when present.
func ErrorWithTraceID(fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}

	traceID, _ := fields[RequestIDKey].(string)
	if traceID == "" || traceID == "unknown" {
		id, err := uuid.NewRandom()
		if err != nil {
			traceID = "unknown"
		} else {
			traceID = id.String()
		}
	}

	fields["trace_id"] = traceID
	entry(fields).Error(msg)
	return traceID
}

func WithRequestID(ctx context.Context) *logrus.Entry {
	requestID := "unknown"
	if ctx != nil {
		requestID = contextPkg.GetRequestID(ctx)
	}
	return NewLogger().WithField(RequestIDKey, requestID)
}
