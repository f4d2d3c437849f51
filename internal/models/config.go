package models

import "time"

// Config represents the application configuration
type Config struct {
	Debug     bool            `yaml:"debug"`
	Browser   BrowserConfig   `yaml:"browser"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Detector  DetectorConfig  `yaml:"detector"`
	Export    ExportConfig    `yaml:"export"`
	Archive   ArchiveConfig   `yaml:"archive"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// BrowserConfig represents the Rod browser session settings
type BrowserConfig struct {
	URL         string        `yaml:"url"`
	Headless    bool          `yaml:"headless"`
	UserDataDir string        `yaml:"userDataDir"` // empty: throwaway profile in /tmp
	LoadTimeout time.Duration `yaml:"loadTimeout"`
}

// MonitorConfig represents the delays between a change signal and the capture attempt
type MonitorConfig struct {
	InitialDelay  time.Duration `yaml:"initialDelay"`
	MutationDelay time.Duration `yaml:"mutationDelay"`
	ClickDelay    time.Duration `yaml:"clickDelay"`
}

// ExtractorConfig holds the ordered selector lists and noise phrases used to read fields.
// Both are tuned to one webmail deployment and are expected to be overridden.
type ExtractorConfig struct {
	SubjectSelectors  []string `yaml:"subjectSelectors"`
	SenderSelectors   []string `yaml:"senderSelectors"`
	DateSelectors     []string `yaml:"dateSelectors"`
	ContentSelectors  []string `yaml:"contentSelectors"`
	FallbackSelectors []string `yaml:"fallbackSelectors"`
	DebugSelectors    []string `yaml:"debugSelectors"`

	SubjectNoise []string `yaml:"subjectNoise"`
	SenderNoise  []string `yaml:"senderNoise"`
	ContentNoise []string `yaml:"contentNoise"`

	MinContentLength  int `yaml:"minContentLength"`
	FallbackMaxLength int `yaml:"fallbackMaxLength"`
}

// DetectorConfig represents the signals that identify an opened single email
type DetectorConfig struct {
	MainSelector     string   `yaml:"mainSelector"`
	ContentSelector  string   `yaml:"contentSelector"`
	LocationPatterns []string `yaml:"locationPatterns"`
}

// ExportConfig represents where and how exports are written
type ExportConfig struct {
	Dir             string `yaml:"dir"`
	FilePrefix      string `yaml:"filePrefix"`
	CSVContentLimit int    `yaml:"csvContentLimit"`
}

// ArchiveConfig represents the optional IMAP folder captured emails are appended to
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Imap     string `yaml:"imap"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	MailBox  string `yaml:"mailbox"`
}

// HTTPConfig represents the control API listener; an empty address disables it
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// AllowedOrigins may open the capture feed besides same-origin pages
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// DefaultConfig returns the configuration used when no file overrides a value
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			URL:         "https://outlook.office.com/mail/",
			LoadTimeout: 60 * time.Second,
		},
		Monitor: MonitorConfig{
			InitialDelay:  1 * time.Second,
			MutationDelay: 500 * time.Millisecond,
			ClickDelay:    1 * time.Second,
		},
		Extractor: ExtractorConfig{
			SubjectSelectors: []string{
				`.allowTextSelection:first-of-type`,
				`[data-testid="message-subject"]`,
				`h1`,
				`h2`,
				`h3`,
				`.rps_f409 span[role="heading"]`,
				`.allowTextSelection[role="heading"]`,
				`div[role="main"] [role="heading"]`,
				`[aria-label*="Betreff"]`,
				`[aria-label*="Subject"]`,
			},
			SenderSelectors: []string{
				`[aria-label*="From"]`,
				`[aria-label*="Von"]`,
				`[data-testid="message-header-from-button"] span`,
				`.rps_f3cb .rps_f3cc`,
				`[role="button"][title*="@"]`,
			},
			DateSelectors: []string{
				`[data-testid="message-header-date-time"]`,
				`time[datetime]`,
				`time`,
				`[aria-label*="Gesendet"]`,
				`[aria-label*="Sent"]`,
				`.rps_f3cb time`,
			},
			ContentSelectors: []string{
				`.allowTextSelection:last-of-type`,
				`[data-testid="message-body-content"]`,
				`.rps_813c`,
				`[role="main"] .allowTextSelection`,
				`div[dir="ltr"]:not(:empty)`,
				`.rps_813c .allowTextSelection`,
				`[role="main"] div[class*="allowTextSelection"]`,
			},
			FallbackSelectors: []string{`[role="main"]`, `main`, `body`},
			DebugSelectors: []string{
				`[data-testid="message-subject"]`,
				`[role="heading"]`,
				`h1`, `h2`, `h3`,
				`.allowTextSelection`,
				`[aria-label*="Von"]`,
				`[aria-label*="From"]`,
				`[title*="@"]`,
				`time`,
				`[datetime]`,
				`.rps_813c`,
				`[role="main"]`,
			},
			SubjectNoise:      []string{"Navigation pane", "Inbox", "Today"},
			ContentNoise:      []string{"Navigation pane", "ReplyReply allForward"},
			MinContentLength:  50,
			FallbackMaxLength: 2000,
		},
		Detector: DetectorConfig{
			MainSelector:     `[role="main"]`,
			ContentSelector:  `.allowTextSelection`,
			LocationPatterns: []string{"/id/", "/inbox/", "/folders/"},
		},
		Export: ExportConfig{
			Dir:             ".",
			FilePrefix:      "outlook_emails",
			CSVContentLimit: 500,
		},
		Archive: ArchiveConfig{
			MailBox: "Captured",
		},
	}
}
