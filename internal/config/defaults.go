package config

// Known configuration keys.
const (
	KeyIDPrefix        = "id.prefix"
	KeyIDLength        = "id.length"
	KeyIDFormat        = "id.format"
	KeyDefaultPriority = "defaults.priority"
	KeyStateFile       = "state.file"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyOutputColor     = "output.color"
)

// DefaultValues returns the default config map for the core keys.
func DefaultValues() map[string]string {
	return map[string]string{
		KeyIDPrefix:        "",
		KeyIDLength:        "6",
		KeyIDFormat:        "short",
		KeyDefaultPriority: "3",
		KeyStateFile:       "tasks.json",
		KeyLogLevel:        "warn",
		KeyLogFormat:       "text",
		KeyOutputColor:     "auto",
	}
}

// ApplyDefaults fills any missing core keys in s with their default values.
func ApplyDefaults(s Store) error {
	defaults := DefaultValues()
	all := s.All()
	for k, v := range defaults {
		if _, exists := all[k]; !exists {
			if err := s.Set(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
