package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// 运行模式
const (
	ModeOnce  = "once"  // 运行一次后退出
	ModeWatch = "watch" // 监听输入文件变化后重新生成
	ModeMail  = "mail"  // 定时检查邮箱附件后生成
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Mode string `json:"mode"` // 运行模式: once / watch / mail

	Input struct {
		Path       string `json:"path"`        // 输入文件路径(.csv 或 .xlsx)
		Encoding   string `json:"encoding"`    // 文本编码: utf-8 / windows-1254 / iso-8859-9
		Delimiter  string `json:"delimiter"`   // CSV 分隔符
		SheetName  string `json:"sheet_name"`  // xlsx 工作表名，为空时取第一个
		HeaderRows int    `json:"header_rows"` // 表头行数
	} `json:"input"`

	Output struct {
		Dir        string  `json:"dir"`         // 图表输出目录
		Format     string  `json:"format"`      // 图片格式: png / svg / pdf
		WidthInch  float64 `json:"width_inch"`  // 图宽(英寸)
		HeightInch float64 `json:"height_inch"` // 图高(英寸)
		ExportXLSX string  `json:"export_xlsx"` // 清洗后数据导出路径，为空不导出
	} `json:"output"`

	Email struct {
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	DataDir    string `json:"data_dir"` // 邮件附件保存目录
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
	LogStdout  bool   `json:"log_stdout"`
	SendEmail  struct {
		Enabled  bool     `json:"enabled"`
		Server   string   `json:"server"`   // SMTP 服务器地址
		Username string   `json:"username"` // 发件人
		Password string   `json:"password"`
		To       []string `json:"to"`      // 收件人列表
		Subject  string   `json:"subject"` // 报告邮件主题
	} `json:"send_email"`
}

// LineConfig 图中的一条曲线
type LineConfig struct {
	Column string  `json:"column"` // 组合列名
	Label  string  `json:"label"`  // 图例
	Color  string  `json:"color"`  // 十六进制颜色，如 #1f77b4
	Width  float64 `json:"width"`  // 线宽(点)
	Alpha  float64 `json:"alpha"`  // 透明度 0-1，0 视为 1
}

// MarkerConfig 竖直事件标记线
type MarkerConfig struct {
	Date  string `json:"date"` // 2006-01-02
	Label string `json:"label"`
	Color string `json:"color"`
}

// ChartConfig 单张图的定义
type ChartConfig struct {
	Name     string         `json:"name"`  // 输出文件名(不含扩展名)
	Title    string         `json:"title"` // 标题
	YLabel   string         `json:"y_label"`
	Lines    []LineConfig   `json:"lines"`
	ZeroLine bool           `json:"zero_line"` // 是否绘制 y=0 虚线
	Markers  []MarkerConfig `json:"markers"`
}

type DataConfig struct {
	Charts []ChartConfig `json:"charts"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

// readFile 读取文件，文件不存在时返回 nil 内容，使用默认配置
func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			errChan <- fmt.Errorf("解析Config失败: %w", err)
			return
		}
	}
	cfg.applyDefaults()
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := &DataConfig{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, dcfg); err != nil {
			errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
			return
		}
	}
	if len(dcfg.Charts) == 0 {
		dcfg = DefaultDataConfig()
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Default 返回内置默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeOnce
	}
	if c.Input.Path == "" {
		c.Input.Path = "ucretli_calisan_duzgun.csv"
	}
	if c.Input.Encoding == "" {
		c.Input.Encoding = "utf-8"
	}
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = ","
	}
	if c.Input.HeaderRows <= 0 {
		c.Input.HeaderRows = 3
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "charts"
	}
	if c.Output.Format == "" {
		c.Output.Format = "png"
	}
	if c.Output.WidthInch <= 0 {
		c.Output.WidthInch = 14
	}
	if c.Output.HeightInch <= 0 {
		c.Output.HeightInch = 6
	}
	if c.Email.CheckInterval <= 0 {
		c.Email.CheckInterval = Duration(30 * time.Minute)
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.LogName == "" {
		c.LogName = "app.log"
	}
	if c.LogMaxSize == "" {
		c.LogMaxSize = "10 * 1024 * 1024"
	}
	if c.SendEmail.Subject == "" {
		c.SendEmail.Subject = "Ücretli çalışan grafikleri"
	}
}

// DefaultDataConfig 返回三张默认图的定义
func DefaultDataConfig() *DataConfig {
	return &DataConfig{
		Charts: []ChartConfig{
			{
				Name:   "sektor_buyume",
				Title:  "Sektörlerin Yıllık Büyüme Oranları (2009-2025)",
				YLabel: "Yıllık Değişim (%)",
				Lines: []LineConfig{
					{Column: "B-E - Sanayi | Takvim etkilerinden | Yıllık değişim", Label: "Sanayi", Color: "#1f77b4", Width: 2},
					{Column: "F - İnşaat | Takvim etkilerinden | Yıllık değişim", Label: "İnşaat", Color: "#ff7f0e", Width: 2},
					{Column: "G-N - Ticaret ve hizmetler | Takvim etkilerinden | Yıllık değişim", Label: "Ticaret", Color: "#2ca02c", Width: 2},
				},
				ZeroLine: true,
			},
			{
				Name:   "turizm_mevsimsellik",
				Title:  "Turizm Sektöründe Mevsimsellik Etkisi",
				YLabel: "Çalışan Sayısı",
				Lines: []LineConfig{
					{Column: "I - Konaklama ve yiyecek hizmeti | Arındırılmamış | Ücretli çalışan sayısı", Label: "Ham Veri (Arındırılmamış)", Color: "#0000ff", Width: 1.5, Alpha: 0.6},
					{Column: "I - Konaklama ve yiyecek hizmeti | Mevsim | Ücretli çalışan sayısı", Label: "Mevsim Etkisinden Arındırılmış", Color: "#ff0000", Width: 2},
				},
			},
			{
				Name:   "toplam_istihdam",
				Title:  "Türkiye Toplam Ücretli Çalışan Sayısı Trendi",
				YLabel: "Çalışan Sayısı",
				Lines: []LineConfig{
					{Column: "B-N - Sanayi, inşaat, ticaret ve hizmetler | Mevsim | Ücretli çalışan sayısı", Color: "#006400", Width: 2},
				},
				Markers: []MarkerConfig{
					{Date: "2020-04-01", Label: "Pandemi Başlangıcı", Color: "#ff0000"},
				},
			},
		},
	}
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Columns 返回所有图引用到的列名(去重，保持顺序)
func (dc *DataConfig) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range dc.Charts {
		for _, l := range c.Lines {
			if !seen[l.Column] {
				seen[l.Column] = true
				cols = append(cols, l.Column)
			}
		}
	}
	return cols
}
