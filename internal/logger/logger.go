package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

const (
	logDirName  = ".trivia-arena"
	logFileName = "client.log"

	// 超过该大小时轮转
	maxLogSize = 10 * 1024 * 1024
)

// TUI 客户端的文件日志。终端被 bubbletea 占用，所有诊断输出
// 都落到用户目录下的日志文件里。
var (
	logFile *os.File
	logPath string

	// 连线级消息追踪开关，默认关闭避免刷爆日志
	traceWire = os.Getenv("TRIVIA_TRACE_WIRE") != ""
)

// Init 打开日志文件并接管标准库 log 的输出
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("获取用户目录失败: %w", err)
	}

	dir := filepath.Join(home, logDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logPath = filepath.Join(dir, logFileName)
	if err := rotateIfNeeded(dir); err != nil {
		return err
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	Infof("日志就绪: %s", logPath)
	return nil
}

// rotateIfNeeded 文件过大时整体挪到带时间戳的备份名
func rotateIfNeeded(dir string) error {
	info, err := os.Stat(logPath)
	if err != nil || info.Size() <= maxLogSize {
		return nil
	}

	backup := filepath.Join(dir, fmt.Sprintf("%s.%d", logFileName, time.Now().Unix()))
	if err := os.Rename(logPath, backup); err != nil {
		return fmt.Errorf("轮转日志失败: %w", err)
	}
	return nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// Infof 记录一般信息
func Infof(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// Errorf 记录错误
func Errorf(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// Panicf 记录 panic 和调用栈
func Panicf(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// Wiref 记录一条收发的消息类型。direction 为 "<<" 收、">>" 发，
// 仅在 TRIVIA_TRACE_WIRE 环境变量设置时生效。
func Wiref(direction, msgType string) {
	if !traceWire {
		return
	}
	log.Printf("[WIRE] %s %s", direction, msgType)
}

// Path 返回当前日志文件路径
func Path() string {
	return logPath
}
