package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	vendorName     = "tacusci"
	appName        = "panoexport"
	configFileName = "config.json"
	configEnvVar   = "PANOEXPORT_CONFIG"
)

var fs afero.Fs = afero.NewOsFs()

// DefaultResolver reads the defaults file from $PANOEXPORT_CONFIG or the
// user config directory.
func DefaultResolver() configdef.Resolver {
	return fileResolver{}
}

type fileResolver struct{}

func (fileResolver) Resolve() (configdef.Values, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		log.Warn("Unable to locate defaults file, using built in defaults: %v", err)
		return applyDefaultSettings(configdef.Values{}), nil
	}
	return load(configPath)
}

func load(configPath string) (configdef.Values, error) {
	var values configdef.Values

	file, err := readConfigFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("No defaults file at %s, using built in defaults", configPath)
			return applyDefaultSettings(values), nil
		}
		return configdef.Values{}, xerror.Errorf("unable to read %s: %w", configPath, err)
	}

	log.Debug("Resolved config file location: %s", configPath)
	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return applyDefaultSettings(values), nil
}

func applyDefaultSettings(values configdef.Values) configdef.Values {
	if len(values.Engine) == 0 {
		values.Engine = defaultSettings[ENGINE].(string)
	}
	if len(values.Output) == 0 {
		values.Output = defaultSettings[OUTPUT].(string)
	}
	if len(values.Format) == 0 {
		values.Format = defaultSettings[FORMAT].(string)
	}
	if len(values.ColorProcessing) == 0 {
		values.ColorProcessing = defaultSettings[COLORPROCESSING].(string)
	}
	if values.BlendingWidth == nil {
		bw := defaultSettings[BLENDINGWIDTH].(int)
		values.BlendingWidth = &bw
	}
	return values
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return xerror.Errorf("parsing configuration error: %w", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	configPath := os.Getenv(configEnvVar)
	if len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}
