package syncer

import "time"

// Conf 同步引擎配置
type Conf struct {
	SaveDebounce     time.Duration `mapstructure:"saveDebounce"`     // 保存合并窗口
	StartupAttempts  int           `mapstructure:"startupAttempts"`  // 启动阶段总尝试次数
	StartupBaseDelay time.Duration `mapstructure:"startupBaseDelay"` // 启动重试的初始间隔
	StartupMaxDelay  time.Duration `mapstructure:"startupMaxDelay"`  // 启动重试的最大间隔
	OpTimeout        time.Duration `mapstructure:"opTimeout"`        // 后台保存/重试的整体超时
}

func (c *Conf) SetDefaults() {
	if c.SaveDebounce <= 0 {
		c.SaveDebounce = 500 * time.Millisecond
	}
	if c.StartupAttempts <= 0 {
		c.StartupAttempts = 5
	}
	if c.StartupBaseDelay <= 0 {
		c.StartupBaseDelay = time.Second
	}
	if c.StartupMaxDelay <= 0 {
		c.StartupMaxDelay = 30 * time.Second
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = 2 * time.Minute
	}
}

// startupDelay returns min(base * 2^retryCount, max).
func (c Conf) startupDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount > 30 {
		return c.StartupMaxDelay
	}
	d := c.StartupBaseDelay << retryCount
	if d <= 0 || d > c.StartupMaxDelay {
		return c.StartupMaxDelay
	}
	return d
}
