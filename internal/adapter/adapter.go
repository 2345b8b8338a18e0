package adapter

import (
	"fmt"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Factory 源数据加载器工厂函数签名
// 入参：全局配置、数据库连接（csvfile 加载器不使用）、日志实例
type Factory func(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error)

// NewSourceLoader 按 source.loader 从工厂注册表创建加载器实例
func NewSourceLoader(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error) {
	name := cfg.Source.Loader
	factory, ok := GetFactory(name)
	if !ok {
		return nil, fmt.Errorf("未找到加载器%s（已注册：%v）", name, ListFactories())
	}
	loader, err := factory(cfg, db, logger)
	if err != nil {
		return nil, fmt.Errorf("创建加载器%s失败: %w", name, err)
	}
	if loader.GetName() != name {
		logger.WithFields(logrus.Fields{
			"config_loader":  name,
			"adapter_loader": loader.GetName(),
		}).Warn("加载器名称与配置不一致")
	}
	logger.WithField("loader", name).Info("源数据加载器初始化成功")
	return loader, nil
}
