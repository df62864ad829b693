package main

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robfig/cron"

	"PaidEmployment/src/chart"
	"PaidEmployment/src/config"
	"PaidEmployment/src/datapush"
	"PaidEmployment/src/datasource/email"
	"PaidEmployment/src/datasource/file"
	"PaidEmployment/src/processor"
	"PaidEmployment/src/storage"
	"PaidEmployment/src/utils"
)

// runResult 一次处理的结果
type runResult struct {
	Frame  *processor.Frame
	Report processor.CleanReport
	Charts []string
	Export string
}

// run 读取 -> 清洗 -> 导出 -> 绘图 -> 推送
func run(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) (*runResult, error) {
	t1 := time.Now()

	delimiter, _ := utf8.DecodeRuneInString(cfg.Input.Delimiter)
	raw, err := file.ReadRaw(cfg.Input.Path, file.ReadOptions{
		Encoding:  cfg.Input.Encoding,
		Delimiter: delimiter,
		SheetName: cfg.Input.SheetName,
	})
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", cfg.Input.Path, err)
	}

	frame, report, err := processor.Clean(raw, processor.CleanOptions{HeaderRows: cfg.Input.HeaderRows})
	if err != nil {
		return nil, fmt.Errorf("清洗数据失败: %w", err)
	}
	logger.Info(fmt.Sprintf("清洗完成: 保留 %d 行, 丢弃 %d 行, %d 个单元格置零",
		report.Rows, report.Dropped, report.Zeroed))
	if report.Unordered > 0 {
		logger.Warning(fmt.Sprintf("日期不是单调递增: %d 处", report.Unordered))
	}
	logger.Info("İlk 3 Tarih: " + formatDates(frame.Head(3)))
	logger.Info("Son 3 Tarih: " + formatDates(frame.Tail(3)))

	if missing := frame.MissingColumns(dcfg.Columns()); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", processor.ErrColumnNotFound, strings.Join(missing, "; "))
	}

	result := &runResult{Frame: frame, Report: report}

	if cfg.Output.ExportXLSX != "" {
		if err := utils.SaveToExcel(frame.DataFrame(), cfg.Output.ExportXLSX, "Veri"); err != nil {
			return result, err
		}
		result.Export = cfg.Output.ExportXLSX
		logger.Info("清洗后的数据已保存到: " + cfg.Output.ExportXLSX)
	}

	result.Charts, err = chart.RenderAll(cfg, dcfg, frame)
	if err != nil {
		return result, fmt.Errorf("绘图失败: %w", err)
	}
	for _, p := range result.Charts {
		logger.Info("图表已生成: " + p)
	}

	if cfg.SendEmail.Enabled {
		if err := pushReport(cfg, result, logger); err != nil {
			return result, err
		}
	}

	logger.Info(fmt.Sprintf("数据处理时间: %v", time.Since(t1)))
	return result, nil
}

func pushReport(cfg *config.Config, result *runResult, logger *storage.Logger) error {
	attachments := append([]string{}, result.Charts...)
	if result.Export != "" {
		attachments = append(attachments, result.Export)
	}

	metrics := result.Frame.CalculateMetrics()
	body := fmt.Sprintf("%v - %v, %v satır.", metrics["first"], metrics["last"], metrics["rows"])

	msg, err := datapush.BuildReport(cfg.SendEmail.Username, cfg.SendEmail.To, cfg.SendEmail.Subject, body, attachments)
	if err != nil {
		return fmt.Errorf("生成报告邮件失败: %w", err)
	}
	sender := datapush.SMTPSender{
		Server:   cfg.SendEmail.Server,
		Username: cfg.SendEmail.Username,
		Password: cfg.SendEmail.Password,
	}
	if err := datapush.PushReport(sender, msg); err != nil {
		return fmt.Errorf("发送报告失败: %w", err)
	}
	logger.Info(fmt.Sprintf("报告已发送给 %s", strings.Join(cfg.SendEmail.To, ", ")))
	return nil
}

// watch 先运行一次，之后输入文件每次变化都重新生成
func watch(ctx context.Context, cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	current := &processor.Frame{}
	rerun := func(path string) {
		logger.Info("输入文件已更新: " + path)
		result, err := run(cfg, dcfg, logger)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		current.Set(result.Frame)
		logger.Info(fmt.Sprintf("当前数据: %v", current.CalculateMetrics()))
	}
	rerun(cfg.Input.Path)

	monitor, err := file.NewFileMonitor(cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("创建文件监控失败: %w", err)
	}
	logger.Info("开始监听: " + cfg.Input.Path)
	return monitor.Watch(ctx, rerun)
}

// mailLoop 定时检查邮箱，收到新的数据附件后处理
func mailLoop(ctx context.Context, cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	client := email.NewEmailClient(cfg.Email.Server, cfg.Email.Username, cfg.Email.Password, logger)
	handler := email.NewAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir, logger)

	check := func() {
		if err := checkMail(client, handler, cfg, dcfg, logger); err != nil {
			logger.Error(err.Error())
		}
	}

	interval := time.Duration(cfg.Email.CheckInterval).String()
	cronSpec := fmt.Sprintf("@every %s", interval)

	c := cron.New()
	if err := c.AddFunc(cronSpec, check); err != nil {
		return fmt.Errorf("创建定时任务失败: %w", err)
	}
	c.Start()
	defer c.Stop()

	logger.Info(fmt.Sprintf("邮件监控服务已启动(检查间隔: %v)", interval))
	check()
	<-ctx.Done()
	return nil
}

func checkMail(svc email.MailService, handler email.EmailHandler, cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	target, err := email.CheckAndProcessEmails(svc, cfg.Email.TargetSubject, logger)
	if err != nil {
		return fmt.Errorf("检查处理邮件失败: %w", err)
	}
	if target == nil {
		return nil
	}

	saved, err := handler.Handle(target)
	if err != nil {
		return fmt.Errorf("处理邮件失败(UID:%d): %w", target.UID, err)
	}
	if len(saved) == 0 {
		return nil
	}

	// 附件替换输入文件，其余配置不变
	local := *cfg
	local.Input.Path = saved[0]
	_, err = run(&local, dcfg, logger)
	return err
}

func formatDates(dates []time.Time) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format("2006-01-02")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
