package util

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var (
	ErrLogNotInitialized      = errors.New("log object is not initialized yet")
	LOG_FOLDER_NAME_WITH_PATH = ".." + string(os.PathSeparator) + "log"
	globalLogLevel            = 3
)

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// ServiceLogger buffers log lines through a channel and drains them into a
// zap file core from a single writer goroutine.
type ServiceLogger struct {
	logBuffer         chan LeveledLogger
	handle            *os.File
	wg                *sync.WaitGroup
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type LeveledLogger struct {
	level  int
	logMsg string
}

func (s *ServiceLogger) Init(logFileName string, rewrite bool) error {

	var (
		err             error
		fileWithRelPath string
	)
	s.wg = new(sync.WaitGroup)
	s.logBuffer = make(chan LeveledLogger, LOG_BUFFER_SIZE)

	s.handle = nil
	fileWithRelPath = LOG_FOLDER_NAME_WITH_PATH + string(os.PathSeparator) + logFileName

	if rewrite {
		s.handle, err = os.OpenFile(fileWithRelPath,
			os.O_RDWR|os.O_CREATE|os.O_TRUNC,
			0666)
	} else {
		s.handle, err = os.OpenFile(fileWithRelPath,
			os.O_RDWR|os.O_CREATE|os.O_APPEND,
			0666)
	}
	if err != nil {
		return err
	}

	s.zapLoggerInit()

	s.wg.Add(1)
	go s.logWriter()

	s.loggerInitialized = true
	return nil
}

func (s *ServiceLogger) zapLoggerInit() {

	var writer zapcore.WriteSyncer
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	config.EncodeLevel = zapcore.CapitalLevelEncoder //To Print level in Uppercase.
	fileEncoder := zapcore.NewConsoleEncoder(config) //To Print Lines in non json format.

	writer = zapcore.AddSync(s.handle)

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, writer, GlobalLogLevelSetter()),
	)
	s.zapLogger = zap.New(core)
	defer s.zapLogger.Sync()
}

func GlobalLogLevelSetter() zapcore.Level {
	var zaplevel zapcore.Level
	if globalLogLevel == LOG_LEVEL_ERROR {
		zaplevel = zapcore.ErrorLevel
	} else if globalLogLevel == LOG_LEVEL_WARN {
		zaplevel = zapcore.WarnLevel
	} else if globalLogLevel == LOG_LEVEL_INFO {
		zaplevel = zapcore.InfoLevel
	} else if globalLogLevel == LOG_LEVEL_DEBUG {
		zaplevel = zapcore.DebugLevel
	}
	return zaplevel
}

func (s *ServiceLogger) logWriter() {
	for logdata := range s.logBuffer {
		if logdata.level == LOG_LEVEL_ERROR {
			s.zapLogger.Error(logdata.logMsg)
		} else if logdata.level == LOG_LEVEL_WARN {
			s.zapLogger.Warn(logdata.logMsg)
		} else if logdata.level == LOG_LEVEL_INFO {
			s.zapLogger.Info(logdata.logMsg)
		} else if logdata.level == LOG_LEVEL_DEBUG {
			s.zapLogger.Debug(logdata.logMsg)
		}
	}
	s.wg.Done()
}

func (s *ServiceLogger) LogEvent(v ...interface{}) error {
	var msg string
	var level int
	var ok bool

	if len(v) == 1 {
		level = LOG_LEVEL_INFO
		msg = fmt.Sprint(v[0])

	} else if len(v) > 1 {
		level, ok = v[0].(int)
		if ok {
			if level == LOG_LEVEL_ERROR || level == LOG_LEVEL_WARN || level == LOG_LEVEL_INFO || level == LOG_LEVEL_DEBUG {
				msg = fmt.Sprintf("%v", v[1:])
			} else {
				level = LOG_LEVEL_INFO
				msg = fmt.Sprintf("%v", v)
			}
		} else {
			level = LOG_LEVEL_INFO
			msg = fmt.Sprintf("%v", v)
		}
		msg = msg[1 : len(msg)-1]
	}

	lobj := LeveledLogger{level, msg}

	if !s.loggerInitialized {
		return ErrLogNotInitialized
	}
	s.logBuffer <- lobj
	return nil
}

func (s *ServiceLogger) DeInit() {

	if !s.loggerInitialized {
		return
	}
	s.loggerInitialized = false
	close(s.logBuffer)
	s.wg.Wait()

	s.handle.Close()

}

func SetCommonLoggerAttributes(GlobalLogLevel int) {
	globalLogLevel = GlobalLogLevel
}

func SetLoggerPath(logPath string) {
	LOG_FOLDER_NAME_WITH_PATH = logPath
}

func CheckAndCreateLogFolder(FolderNameWithPath string) {
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(FolderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
