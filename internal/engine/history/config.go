package history

import (
	"fmt"
	"time"
)

const DefaultDateLayout = "1/2/2006"

// Conf 历史查询配置
type Conf struct {
	Location   string `mapstructure:"location"`   // IANA 时区名，空为本机时区
	DateLayout string `mapstructure:"dateLayout"` // 重建团队名称中的日期格式
}

func (c *Conf) SetDefaults() {
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
}

// Options are the resolved settings used by the query functions.
type Options struct {
	Location   *time.Location
	DateLayout string
}

func DefaultOptions() Options {
	return Options{Location: time.Local, DateLayout: DefaultDateLayout}
}

// Options resolves the configured location.
func (c Conf) Options() (Options, error) {
	c.SetDefaults()
	opts := Options{Location: time.Local, DateLayout: c.DateLayout}
	if c.Location != "" {
		loc, err := time.LoadLocation(c.Location)
		if err != nil {
			return Options{}, fmt.Errorf("load history location %q: %w", c.Location, err)
		}
		opts.Location = loc
	}
	return opts, nil
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) layout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}
