package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/kliva/kliva/internal/config"
	"github.com/kliva/kliva/internal/logging"
	"github.com/kliva/kliva/internal/segments"
	"github.com/kliva/kliva/internal/server"
	"github.com/kliva/kliva/internal/server/routes"
	"github.com/kliva/kliva/internal/settings"
	"github.com/kliva/kliva/internal/strava"
	"github.com/kliva/kliva/internal/units"
	"github.com/kliva/kliva/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	setToken    string
	setUnits    string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.setToken != "" || opts.setUnits != "" {
		if err := updateSettings(cfg, opts); err != nil {
			fmt.Fprintf(stdErr, "写入设置失败: %v\n", err)
			return 1
		}
		fields := logging.BaseFields("update_settings", opts.configPath)
		fields["settings_path"] = cfg.Global.SettingsPath
		fields["token_updated"] = opts.setToken != ""
		fields["unit"] = opts.setUnits
		logger.WithFields(fields).Info("设置已保存")
		return 0
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["token_source"] = cfg.Strava.TokenSource()
		fields["base_url"] = cfg.Strava.BaseURL
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 设置存储 → HTTP 客户端 → 分段服务 → Fiber server，
	// 所有请求共享同一份内存缓存。
	app, err := buildApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化服务失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["token_source"] = cfg.Strava.TokenSource()
	fields["cache_ttl"] = cfg.Global.CacheTTL.DurationValue().String()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("kliva", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		opts       cliOptions
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 KLIVA_CONFIG 覆盖）")
	fs.BoolVar(&opts.checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	fs.StringVar(&opts.setToken, "set-token", "", "保存访问令牌到设置文件后退出")
	fs.StringVar(&opts.setUnits, "set-units", "", "保存距离单位偏好（metric|imperial）后退出")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	if opts.setUnits != "" {
		if _, err := units.Parse(opts.setUnits); err != nil {
			return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
		}
	}

	path := os.Getenv("KLIVA_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}
	opts.configPath = path

	return opts, nil
}

// updateSettings 总是写入 SettingsPath 指向的文件，即使配置中提供了固定令牌。
func updateSettings(cfg *config.Config, opts cliOptions) error {
	store, err := settings.NewFileStore(cfg.Global.SettingsPath, cfg.Strava.DistanceUnit)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if opts.setToken != "" {
		if err := store.SetAccessToken(ctx, opts.setToken); err != nil {
			return err
		}
	}
	if opts.setUnits != "" {
		unit, err := units.Parse(opts.setUnits)
		if err != nil {
			return err
		}
		if err := store.SetDistanceUnit(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// buildApp 组装设置存储、API 客户端、分段服务与 HTTP 路由。
func buildApp(cfg *config.Config, logger *logrus.Logger) (*fiber.App, error) {
	store, err := settings.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("构建设置存储失败: %w", err)
	}

	client, err := strava.NewClient(strava.NewHTTPClient(cfg), cfg.Strava.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("构建 API 客户端失败: %w", err)
	}

	service, err := segments.NewService(client, store, segments.Options{
		TTL:    cfg.Global.CacheTTL.DurationValue(),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("构建分段服务失败: %w", err)
	}

	app, err := server.NewApp(server.AppOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	routes.RegisterSegmentRoutes(app, service)
	routes.RegisterDiagnosticsRoutes(app, service)
	server.RegisterFallback(app)
	return app, nil
}

func startHTTPServer(app *fiber.App, port int, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
