package main

import (
	"log"
	"os"

	api "sigflow/cmd/sigflow"
	"sigflow/conf"
	"sigflow/pkg/db"
	"sigflow/pkg/logger"
)

// 启动服务（监听webhook）

/*
测试

BODY='{"text":"Long BTC 0.75 entry 63000 stop 61500 take profit 64000 tp2 65000"}'
SECRET="ab12cd34ef56abcdef1234567890abcdef1234567890abcdef1234567890"
SIGNATURE=$(echo -n $BODY | openssl dgst -sha256 -hmac $SECRET | sed 's/^.* //')

curl -X POST http://localhost:12190/webhook/signal \
  -H "Content-Type: application/json" \
  -H "X-Signature: $SIGNATURE" \
  -d "$BODY"
*/

func main() {

	// 加载配置文件
	err := conf.LoadConfig("conf/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := conf.AppConfig
	logger.InitLogger(&appCfg.Log, appCfg.AppName)

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	if dbUser == "" || dbPass == "" || dbHost == "" {
		dbUser = appCfg.Username
		dbPass = appCfg.Db.Password
		dbHost = appCfg.Host
		dbPort = appCfg.Port
		dbName = appCfg.DbName
	}

	// 初始化数据库
	datasource := db.Init(db.Config{
		User:      dbUser,
		Password:  dbPass,
		Host:      dbHost,
		Port:      dbPort,
		DBName:    dbName,
		ParseTime: true,
	})

	// 创建并启动服务
	srv := api.NewServer(&appCfg)
	srv.RegisterOnShutdown(func() {
		if datasource != nil {
			// 关闭主库链接
			m, err := datasource.DB()
			if err == nil {
				_ = m.Close()
			}
		}
		logger.Sync()
	})
	srvRouter := api.InitRouter(datasource)

	srv.Run(srvRouter)
}
