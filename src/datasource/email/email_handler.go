// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"PaidEmployment/src/storage"
	"PaidEmployment/src/utils"
)

// ====================== 邮件处理器实现 ======================

// 接受的附件类型
var dataExtensions = []string{".csv", ".xlsx"}

type AttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex    // 保护processedUIDs的读写锁
	logger        *storage.Logger
}

func NewAttachmentHandler(subject, dataDir string, logger *storage.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
		logger:        logger,
	}
}

// isProcessed 检查邮件是否已处理过（线程安全）
func (h *AttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *AttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 保存邮件中的 csv/xlsx 附件，返回保存路径
func (h *AttachmentHandler) Handle(email *Email) ([]string, error) {
	if email == nil || h.isProcessed(email.UID) {
		return nil, nil
	}

	if !strings.Contains(email.Subject, h.TargetSubject) {
		h.info(fmt.Sprintf("跳过主题不匹配的邮件: %s", email.Subject))
		return nil, nil
	}

	h.info(fmt.Sprintf("处理邮件: %s 发件人: %s 日期: %s",
		email.Subject, email.From, email.Date.Format("2006-01-02 15:04:05")))

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	var saved []string
	for _, attachment := range email.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if !isDataFile(ext) {
			continue
		}

		// 只取文件名，防止附件名带路径
		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件失败: %w", err)
		}

		h.info("附件已保存到: " + filePath)
		saved = append(saved, filePath)
	}

	if len(saved) > 0 {
		h.markAsProcessed(email.UID)
	}
	return saved, nil
}

func (h *AttachmentHandler) info(msg string) {
	if h.logger != nil {
		h.logger.Info(msg)
	}
}

func isDataFile(ext string) bool {
	return utils.Contains(dataExtensions, ext)
}
