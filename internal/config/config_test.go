package config

import (
	"os"
	"path/filepath"
	"testing"

	"rentdesk/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "rentdesk"
database:
  path: "test.db"
api:
  jwt_secret: "test-secret"
vehicles:
  - id: 1
    name: "Toyota Corolla"
    daily_rate: 100
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "rentdesk" {
		t.Errorf("expected app name rentdesk, got %s", cfg.App.Name)
	}
	if len(cfg.Vehicles) != 1 || cfg.Vehicles[0].ID != 1 {
		t.Errorf("expected 1 vehicle with ID 1")
	}
	if cfg.Vehicles[0].DailyRate != 100 {
		t.Errorf("expected daily rate 100, got %v", cfg.Vehicles[0].DailyRate)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.Notifications.Worker.MaxRetries != models.DefaultMaxRetries {
		t.Errorf("expected default worker retries, got %d", cfg.Notifications.Worker.MaxRetries)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("RENTDESK_JWT_SECRET", "from-env")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := `
database:
  path: "test.db"
api:
  jwt_secret: "${RENTDESK_JWT_SECRET}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.API.JWTSecret != "from-env" {
		t.Errorf("expected jwt secret from env, got %s", cfg.API.JWTSecret)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "rentdesk.db"},
				API:      APIConfig{JWTSecret: "secret"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				API: APIConfig{JWTSecret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "missing jwt secret",
			cfg: Config{
				Database: DatabaseConfig{Path: "rentdesk.db"},
			},
			wantErr: true,
		},
		{
			name: "email enabled without host",
			cfg: Config{
				Database:      DatabaseConfig{Path: "rentdesk.db"},
				API:           APIConfig{JWTSecret: "secret"},
				Notifications: NotificationsConfig{Email: EmailConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "duplicate vehicle ids",
			cfg: Config{
				Database: DatabaseConfig{Path: "rentdesk.db"},
				API:      APIConfig{JWTSecret: "secret"},
				Vehicles: []models.Vehicle{
					{ID: 1, Name: "A", DailyRate: 10},
					{ID: 1, Name: "B", DailyRate: 20},
				},
			},
			wantErr: true,
		},
		{
			name: "negative daily rate",
			cfg: Config{
				Database: DatabaseConfig{Path: "rentdesk.db"},
				API:      APIConfig{JWTSecret: "secret"},
				Vehicles: []models.Vehicle{{ID: 1, Name: "A", DailyRate: -5}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
