// Command dingtest sends one test message through the configured webhook so
// credentials can be verified before attaching the daemon to a host.
// Exit code 0 on success, 1 on missing/incomplete config or delivery failure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"dingnotify/internal/dingtalk"
)

type testConfig struct {
	AccessToken string `json:"accessToken"`
	Secret      string `json:"secret"`
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.example.json", "path to a config json with accessToken and secret")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config not found or incomplete:", err)
		os.Exit(1)
	}

	fmt.Println("configuration loaded:")
	fmt.Printf("  access token: %s\n", mask(cfg.AccessToken))
	fmt.Printf("  secret:       %s\n", mask(cfg.Secret))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := dingtalk.New(cfg.AccessToken, cfg.Secret, false, nil)
	title := "🧪 dingnotify 测试消息"
	body := fmt.Sprintf(`## 🧪 测试消息

**状态:** ✅ 配置正确，消息发送成功

**时间:** %s

---
如果看到这条消息，说明配置正确，可以正常使用！`, time.Now().Format("2006/01/02 15:04:05"))

	if err := client.Send(ctx, title, body); err != nil {
		fmt.Fprintln(os.Stderr, "failed to send test message:", err)
		os.Exit(1)
	}

	fmt.Println("test message sent; check the group chat.")
}

func loadConfig(path string) (*testConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg testConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if cfg.AccessToken == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("accessToken or secret is empty in %s", path)
	}
	return &cfg, nil
}

func mask(s string) string {
	if len(s) <= 20 {
		return "****"
	}
	return s[:10] + "..." + s[len(s)-10:]
}
