package firebase

import (
	"fmt"
	"os"

	"google.golang.org/api/option"

	"storefront/pkg/config"
	"storefront/pkg/logger"
)

// ClientOption picks the service account from FIREBASE_SERVICE_ACCOUNT_JSON,
// then FIREBASE_SERVICE_ACCOUNT_PATH. With neither set it returns nil and the
// SDK falls back to Application Default Credentials.
func ClientOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)), nil
	}

	if cfg.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath), nil
	}

	logger.Info("Using Application Default Credentials for Firebase")
	return nil, nil
}
