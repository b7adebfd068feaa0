package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取单个 YAML 配置文件。敏感项（私钥、bot token 等）可以用
// TALON_ 前缀的环境变量覆盖，如 TALON_SOLANA_PRIVATE_KEY。
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TALON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvKeys 显式绑定敏感项，AutomaticEnv 对未出现在文件里的键不生效。
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"solana.private_key",
		"solana.rpc_url",
		"solana.ws_url",
		"notify.telegram.bot_token",
		"notify.telegram.chat_id",
	} {
		_ = v.BindEnv(key)
	}
}
