// migrate 手动执行或回滚数据库迁移
//
//	migrate            # 升级到最新版本
//	migrate -down 1    # 回滚 1 步
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"ums-obe/backend/config"
	"ums-obe/backend/pkg/database"
	applogger "ums-obe/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	down := flag.Int("down", 0, "回滚步数，0 表示升级到最新")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if *down > 0 {
		err = database.Rollback(sqlDB, *down, logger)
	} else {
		err = database.RunMigrations(sqlDB, logger)
	}
	if err != nil {
		logger.Fatal("迁移失败", zap.Error(err))
	}
}
