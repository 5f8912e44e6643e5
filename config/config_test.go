package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("仅使用默认值加载应成功: %v", err)
	}
	if cfg.Grading.DefaultPassThreshold != 50 {
		t.Errorf("期望默认及格线 50，实际: %v", cfg.Grading.DefaultPassThreshold)
	}
	if cfg.Grading.ScoreEditWindow != 720*time.Hour {
		t.Errorf("期望成绩锁定窗口 720h，实际: %v", cfg.Grading.ScoreEditWindow)
	}
	if cfg.Grading.AutosaveDebounce != time.Second {
		t.Errorf("期望去抖窗口 1s，实际: %v", cfg.Grading.AutosaveDebounce)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\ngrading:\n  default_pass_threshold: 60\n  cap_scores_at_weight: true\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	t.Setenv("UMS_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载应成功: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("环境变量应覆盖配置文件，期望 7070，实际: %d", cfg.Server.Port)
	}
	if cfg.Grading.DefaultPassThreshold != 60 || !cfg.Grading.CapScoresAtWeight {
		t.Errorf("配置文件值未生效: %+v", cfg.Grading)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Server:  ServerConfig{Port: 8080},
		Grading: GradingConfig{DefaultPassThreshold: 50, AutosaveDebounce: time.Second},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("合法配置应通过: %v", err)
	}

	bad := base
	bad.Grading.DefaultPassThreshold = 120
	if err := bad.Validate(); err == nil {
		t.Error("及格线 120 应校验失败")
	}

	bad = base
	bad.Server.Port = 0
	if err := bad.Validate(); err == nil {
		t.Error("端口 0 应校验失败")
	}

	bad = base
	bad.Grading.AutosaveDebounce = 0
	if err := bad.Validate(); err == nil {
		t.Error("去抖窗口 0 应校验失败")
	}
}
