package main

import (
	"flag"

	"github.com/go-arcade/qaboard/internal/engine/bootstrap"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: main.go
 * @description: qaboard server
 */

var configFile string

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
}

func main() {
	flag.Parse()

	// Bootstrap 初始化应用
	app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
	if err != nil {
		panic(err)
	}

	// 启动应用并等待退出信号
	bootstrap.Run(app, cleanup)
}
