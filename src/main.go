package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PaidEmployment/src/config"
	"PaidEmployment/src/storage"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	logger.SetMaxSize(cfg.LogMaxSize)
	if cfg.LogStdout {
		logger.SetMirror(os.Stdout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel, logger)

	logger.Info(fmt.Sprintf("启动, 模式: %s, 输入: %s", cfg.Mode, cfg.Input.Path))

	switch cfg.Mode {
	case config.ModeOnce:
		_, err = run(cfg, dcfg, logger)
	case config.ModeWatch:
		err = watch(ctx, cfg, dcfg, logger)
	case config.ModeMail:
		err = mailLoop(ctx, cfg, dcfg, logger)
	default:
		err = fmt.Errorf("未知的运行模式: %q", cfg.Mode)
	}
	cancel()

	if err != nil {
		logger.Fatal(err.Error())
		logger.Close()
		os.Exit(1)
	}
	logger.Info("完成")
	logger.Close()
}

// setupSignalHandler SIGINT/SIGTERM 取消运行，SIGHUP 重新打开日志文件
func setupSignalHandler(cancel context.CancelFunc, logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGHUP:
				if err := logger.Reopen(); err != nil {
					log.Printf("Failed to reopen log: %v", err)
				}
			default:
				logger.Info("Received signal: " + sig.String() + ", shutting down...")
				cancel()
				return
			}
		}
	}()
}
