package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	file := writeFile(t, tmpDir, "config.yaml", `environment: production
server:
  port: 9090
kafka:
  brokers: ["localhost:9092"]
  topics:
    draw_conducted: lotto.draws
lottery:
  offices: 4
  seed: 42
  draw_schedule: "0 20 * * 3,6"
  initial_funds: "1500.25"
`)

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.IsProduction() {
		t.Errorf("Expected production environment, got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Lottery.Offices != 4 || cfg.Lottery.Seed != 42 {
		t.Errorf("Unexpected lottery section: %+v", cfg.Lottery)
	}
	if cfg.Lottery.DrawSchedule != "0 20 * * 3,6" {
		t.Errorf("Unexpected draw schedule %q", cfg.Lottery.DrawSchedule)
	}
	funds, err := cfg.Lottery.InitialFundsMinor()
	if err != nil {
		t.Fatalf("InitialFundsMinor: %v", err)
	}
	if funds != 150025 {
		t.Errorf("Expected 150025 minor units, got %d", funds)
	}
	if got := cfg.Kafka.Topic(TopicDrawConducted); got != "lotto.draws" {
		t.Errorf("Expected configured topic, got %q", got)
	}
	if got := cfg.Kafka.Topic(TopicTicketIssued); got != "lotto.ticket_issued" {
		t.Errorf("Expected fallback topic, got %q", got)
	}
	if cfg.Simulation.Players != 100 || cfg.Simulation.Draws != 10 {
		t.Errorf("Expected simulation defaults, got %+v", cfg.Simulation)
	}
}

func TestLoadDirMergesAlphabetically(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "z-override.yaml", `server:
  port: 7000
lottery:
  offices: 9
`)
	writeFile(t, tmpDir, "a-base.yaml", `environment: development
server:
  port: 8081
  enable_cors: true
lottery:
  offices: 2
  seed: 5
`)
	writeFile(t, tmpDir, "notes.txt", "ignored")

	cfg, err := LoadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config from directory: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Expected port 7000 from the last file, got %d", cfg.Server.Port)
	}
	if !cfg.Server.EnableCORS {
		t.Error("Expected enable_cors from the first file")
	}
	if cfg.Lottery.Offices != 9 || cfg.Lottery.Seed != 5 {
		t.Errorf("Unexpected merged lottery section: %+v", cfg.Lottery)
	}
}

func TestLoadDirErrors(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Error("Expected error when loading from empty directory, got nil")
	}
	if _, err := LoadDir("/non/existent/dir"); err == nil {
		t.Error("Expected error when loading from non-existent directory, got nil")
	}
	if _, err := LoadPath("/non/existent/file.yaml"); err == nil {
		t.Error("Expected error for missing path, got nil")
	}
}

func TestLoadByEnv(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config-staging.yaml", `environment: staging
lottery:
  offices: 3
`)
	t.Setenv("ENV", "staging")

	cfg, err := LoadByEnv(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config by env: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Lottery.Offices != 3 {
		t.Errorf("Unexpected config: %+v", cfg.Lottery)
	}
}

func TestInvalidAmounts(t *testing.T) {
	if _, err := (LotteryConfig{InitialFunds: "lots"}).InitialFundsMinor(); err == nil {
		t.Error("Expected error for malformed initial funds")
	}
	if v, err := (LotteryConfig{}).InitialFundsMinor(); err != nil || v != 0 {
		t.Errorf("Expected zero funds, got %d (%v)", v, err)
	}
	if v, err := Default().Simulation.InitialBalanceMinor(); err != nil || v != 10000 {
		t.Errorf("Expected default balance 10000, got %d (%v)", v, err)
	}
	if v, err := Default().Lottery.PlayerBalanceMinor(); err != nil || v != 10000 {
		t.Errorf("Expected default player balance 10000, got %d (%v)", v, err)
	}
	if _, err := (LotteryConfig{PlayerBalance: "1,00"}).PlayerBalanceMinor(); err == nil {
		t.Error("Expected error for malformed player balance")
	}
}
