package config

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultOutputDir is the directory report folders are created in.
	DefaultOutputDir = "."

	// DefaultCSVEncoding is the character encoding of the CSV files.
	DefaultCSVEncoding = "utf-8"

	// DefaultCSVDelimiter keeps the files usable in spreadsheet locales
	// that use a decimal comma.
	DefaultCSVDelimiter = ";"

	// DefaultBatchSize is the number of projects processed concurrently.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "projectreport"
)

// DefaultFormats are written when no format is requested.
var DefaultFormats = []string{"csv", "html"}

// Setting names a configuration value that the YAML file can provide.
type Setting string

// Settings that can be pinned by command-line flags.
const (
	SettingOutputDir    Setting = "output-dir"
	SettingFormats      Setting = "format"
	SettingOverwrite    Setting = "overwrite"
	SettingRedact       Setting = "redact"
	SettingCSVEncoding  Setting = "csv-encoding"
	SettingCSVDelimiter Setting = "csv-delimiter"
	SettingHTMLTitle    Setting = "html-title"
)

// Config holds all configuration options for a report run.
// It is populated from CLI flags and the configuration file and passed
// through the application rather than kept as global state.
type Config struct {
	// OutputDir is the base directory. Each project gets its own
	// <OutputDir>/<project name> folder.
	OutputDir string

	// Formats lists the requested output formats by name.
	Formats []string

	// Overwrite removes an existing report folder before writing.
	Overwrite bool

	// Redact masks passwords and tokens found in data source URIs.
	Redact bool

	// CSVEncoding is a WHATWG encoding label for the CSV files.
	CSVEncoding string

	// CSVDelimiter is the single-character CSV field separator.
	CSVDelimiter string

	// HTMLTitle overrides the HTML page title. Empty means
	// "<project> project report".
	HTMLTitle string

	// PrettyJSON indents the JSON report.
	PrettyJSON bool

	// RawHeaders keeps the CSV column names in the HTML tables.
	RawHeaders bool

	// LogJSON writes log records as JSON instead of text.
	LogJSON bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of projects processed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .projectreport in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// ProjectFile holds the defaults and per-project overrides loaded from
	// the configuration file.
	ProjectFile *File

	// History records every generated report in the history database.
	History bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/projectreport on Linux).
	DBDir string

	// Targets is the list of project files to report on.
	Targets []string

	// pinned holds settings given explicitly on the command line. The
	// configuration file never overrides them.
	pinned map[Setting]bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		Formats:      append([]string(nil), DefaultFormats...),
		Redact:       true,
		CSVEncoding:  DefaultCSVEncoding,
		CSVDelimiter: DefaultCSVDelimiter,
		BatchSize:    DefaultBatchSize,
		History:      true,
		DBDir:        XDGDataDir(),
	}
}

// Pin marks a setting as given on the command line.
func (c *Config) Pin(s Setting) {
	if c.pinned == nil {
		c.pinned = make(map[Setting]bool)
	}
	c.pinned[s] = true
}

// Pinned reports whether a setting was given on the command line.
func (c *Config) Pinned(s Setting) bool {
	return c.pinned[s]
}

// ForProject returns the configuration for one project: the file's
// defaults and the project's own overrides applied to every setting not
// pinned on the command line.
func (c *Config) ForProject(name string) *Config {
	out := *c
	out.Formats = append([]string(nil), c.Formats...)
	if c.ProjectFile == nil {
		return &out
	}
	out.apply(c.ProjectFile.GetProjectSettings(name))
	return &out
}

// apply copies the set values of s into c, skipping pinned settings.
func (c *Config) apply(s ProjectSettings) {
	if s.OutputDir != "" && !c.Pinned(SettingOutputDir) {
		c.OutputDir = s.OutputDir
	}
	if len(s.Formats) > 0 && !c.Pinned(SettingFormats) {
		c.Formats = append([]string(nil), s.Formats...)
	}
	if s.Overwrite != nil && !c.Pinned(SettingOverwrite) {
		c.Overwrite = *s.Overwrite
	}
	if s.Redact != nil && !c.Pinned(SettingRedact) {
		c.Redact = *s.Redact
	}
	if s.CSVEncoding != "" && !c.Pinned(SettingCSVEncoding) {
		c.CSVEncoding = s.CSVEncoding
	}
	if s.CSVDelimiter != "" && !c.Pinned(SettingCSVDelimiter) {
		c.CSVDelimiter = s.CSVDelimiter
	}
	if s.HTMLTitle != "" && !c.Pinned(SettingHTMLTitle) {
		c.HTMLTitle = s.HTMLTitle
	}
}

// Delimiter returns the CSV delimiter as a rune, or 0 for the default.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// XDGDataDir returns the XDG data directory for projectreport.
// On Linux: ~/.local/share/projectreport
// On macOS: ~/Library/Application Support/projectreport
// On Windows: %LOCALAPPDATA%\projectreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for projectreport.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if err := c.ValidateProject(); err != nil {
		return err
	}
	if c.History && c.DBDir == "" {
		return ErrNoDatabaseDir
	}
	return nil
}

// ValidateProject checks the settings that the configuration file can
// change per project.
func (c *Config) ValidateProject() error {
	if len(c.Formats) == 0 {
		return ErrNoFormat
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	return validateDelimiter(c.CSVDelimiter)
}

func validateDelimiter(d string) error {
	if d == "" {
		return nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return ErrInvalidDelimiter
	}
	switch d {
	case `"`, "\r", "\n":
		return ErrInvalidDelimiter
	}
	return nil
}
