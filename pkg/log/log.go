/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogPrefix     = "[go-scope] "
	ErrorPrefix   = "[error] "
	WarningPrefix = "[warn] "
	InfoPrefix    = "[info] "
	DebugPrefix   = "[debug] "
	HelpLevels    = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

var levelMapping = map[string]LogLevel{
	"error":   ErrorLevel,
	"warning": WarningLevel,
	"info":    InfoLevel,
	"debug":   DebugLevel,
}

type Logger struct {
	level LogLevel
	out   io.Writer
	*log.Logger
}

var logger = &Logger{
	level:  InfoLevel,
	out:    os.Stderr,
	Logger: log.New(os.Stderr, LogPrefix, log.LstdFlags),
}

func ParseLevel(strLevel string) (LogLevel, error) {
	level, ok := levelMapping[strLevel]
	if !ok {
		return ErrorLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.level = level
	return nil
}

func GetLevel() LogLevel {
	return logger.level
}

// Init redirects the logger and sets the level. An unknown level falls back
// to info with a warning instead of stopping the program.
func Init(out io.Writer, strLevel string) {
	logger.out = out
	logger.SetOutput(out)
	if err := SetLevel(strLevel); err != nil {
		logger.level = InfoLevel
		Warning("%s Using info.", err)
	}
}

// Writer returns the writer access logs go to. Below debug level they are discarded.
func Writer() io.Writer {
	if logger.level < DebugLevel {
		return io.Discard
	}
	return logger.out
}

func Error(format string, v ...interface{}) {
	if logger.level >= ErrorLevel {
		logger.Println(fmt.Sprintf(ErrorPrefix+format, v...))
	}
}

func Warning(format string, v ...interface{}) {
	if logger.level >= WarningLevel {
		logger.Println(fmt.Sprintf(WarningPrefix+format, v...))
	}
}

func Info(format string, v ...interface{}) {
	if logger.level >= InfoLevel {
		logger.Println(fmt.Sprintf(InfoPrefix+format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if logger.level >= DebugLevel {
		logger.Println(fmt.Sprintf(DebugPrefix+format, v...))
	}
}
