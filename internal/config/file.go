package config

// ProjectSettings holds report settings that the configuration file can set
// for all projects or for a single one. Empty values leave the current
// setting untouched.
type ProjectSettings struct {
	// OutputDir is the base directory for report folders.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Formats lists output formats (csv, html, markdown, json).
	Formats []string `yaml:"formats,omitempty"`

	// Overwrite removes an existing report folder before writing.
	Overwrite *bool `yaml:"overwrite,omitempty"`

	// Redact masks credentials in data source URIs.
	Redact *bool `yaml:"redact,omitempty"`

	// CSVEncoding is the CSV character encoding label (e.g. "windows-1252").
	CSVEncoding string `yaml:"csvEncoding,omitempty"`

	// CSVDelimiter is the CSV field separator.
	CSVDelimiter string `yaml:"csvDelimiter,omitempty"`

	// HTMLTitle overrides the HTML page title.
	HTMLTitle string `yaml:"htmlTitle,omitempty"`
}

// File represents the structure of the .projectreport configuration file.
type File struct {
	// Defaults apply to every project.
	Defaults ProjectSettings `yaml:"defaults,omitempty"`

	// Projects maps project names (the file name without extension) to
	// their own settings.
	Projects map[string]ProjectSettings `yaml:"projects,omitempty"`
}

// GetProjectSettings returns the settings for a project: its own values
// merged over the defaults.
func (cf *File) GetProjectSettings(name string) ProjectSettings {
	result := cf.Defaults
	result.Formats = append([]string(nil), cf.Defaults.Formats...)

	override, ok := cf.Projects[name]
	if !ok {
		return result
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if len(override.Formats) > 0 {
		result.Formats = append([]string(nil), override.Formats...)
	}
	if override.Overwrite != nil {
		result.Overwrite = override.Overwrite
	}
	if override.Redact != nil {
		result.Redact = override.Redact
	}
	if override.CSVEncoding != "" {
		result.CSVEncoding = override.CSVEncoding
	}
	if override.CSVDelimiter != "" {
		result.CSVDelimiter = override.CSVDelimiter
	}
	if override.HTMLTitle != "" {
		result.HTMLTitle = override.HTMLTitle
	}
	return result
}
