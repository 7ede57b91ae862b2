package logger_test

import (
	"bytes"
	"encoding/json"
	"fmt"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/csv2athena/logger"
)

// lineLogger has only the leveled calls the services make; it must be enough to satisfy logger.Logger.
type lineLogger struct{ lines []string }

func (l *lineLogger) add(level string, m []interface{}) {
	l.lines = append(l.lines, level+": "+fmt.Sprint(m...))
}

func (l *lineLogger) Trace(m ...interface{}) { l.add("trace", m) }
func (l *lineLogger) Debug(m ...interface{}) { l.add("debug", m) }
func (l *lineLogger) Info(m ...interface{}) { l.add("info", m) }
func (l *lineLogger) Warn(m ...interface{}) { l.add("warn", m) }
func (l *lineLogger) Error(m ...interface{}) { l.add("error", m) }
func (l *lineLogger) WithField(string, interface{}) logger.Logger { return l }

var (
	_ logger.Logger = (*logger.LoggerImpl)(nil)
	_ logger.Logger = (*lineLogger)(nil)
)

var _ = Describe("Logger", func() {
	var (
		logOutput *bytes.Buffer
		log       *logger.LoggerImpl
	)

	decode := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		logOutput = bytes.NewBufferString("")
		log = logger.NewJSONLogger(logOutput, "test-service", "debug", true)
	})

	It("Should have `test-service` as service name", func() {
		log.Info("Testing")
		Expect(decode()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		log.Info("Testing")
		Expect(decode()["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		log.Warn("Testing")
		Expect(decode()["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		log.Error("Testing")
		actual := decode()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		log.Info("Testing")
		Expect(decode()["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added with WithField", func() {
		log.WithField("runId", "abc").WithField("key", "data/x.csv").Info("Testing")
		actual := decode()
		Expect(actual["runId"]).To(Equal("abc"))
		Expect(actual["key"]).To(Equal("data/x.csv"))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should drop entries below the configured level", func() {
		quiet := logger.NewJSONLogger(logOutput, "test-service", "warn", false)
		quiet.Info("Testing")
		Expect(logOutput.Len()).To(Equal(0))
	})

	It("Should be satisfied by a logger with only leveled calls", func() {
		var l logger.Logger = &lineLogger{}
		l.WithField("key", "x").Warn("Testing ", 1)
		Expect(l.(*lineLogger).lines).To(Equal([]string{"warn: Testing 1"}))
	})
})
