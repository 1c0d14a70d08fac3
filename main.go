package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ycr/usercenter/config"
	"github.com/ycr/usercenter/database"
	"github.com/ycr/usercenter/logger"
	"github.com/ycr/usercenter/web"
	"github.com/ycr/usercenter/web/service"

	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
	defer logger.CloseLogger()

	err = database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		logger.Error("start server err:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, restarting web server")
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				logger.Error("restart server err:", err)
				return
			}
		default:
			logger.Info("received", sig, "shutting down")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func openDB() bool {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return false
	}
	return true
}

func resetSetting() {
	if !openDB() {
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	err := settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	if !openDB() {
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed, error info:", err)
	}
	basePath, err := settingService.GetBasePath()
	if err != nil {
		fmt.Println("get current base path failed, error info:", err)
	}
	maxAge, err := settingService.GetSessionMaxAge()
	if err != nil {
		fmt.Println("get current session max age failed, error info:", err)
	}
	origins, err := settingService.GetAllowOrigins()
	if err != nil {
		fmt.Println("get allowed origins failed, error info:", err)
	}
	domain, err := settingService.GetWebDomain()
	if err != nil {
		fmt.Println("get web domain failed, error info:", err)
	}
	fmt.Println("current settings as follows:")
	fmt.Println("port:", port)
	fmt.Println("basePath:", basePath)
	fmt.Println("sessionMaxAge:", maxAge, "minutes")
	fmt.Println("allowOrigins:", strings.Join(origins, ","))
	fmt.Println("webDomain:", domain)
	fmt.Println("sessionStore:", config.GetSessionStore())
}

type settingUpdate struct {
	port          int
	basePath      string
	sessionMaxAge int
	origins       string
	domain        string
	certFile      string
	keyFile       string
}

func updateSetting(u settingUpdate) {
	if !openDB() {
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	report := func(what string, err error) {
		if err != nil {
			fmt.Printf("set %s failed: %v\n", what, err)
		} else {
			fmt.Printf("set %s success\n", what)
		}
	}

	if u.port > 0 {
		report("port", settingService.SetPort(u.port))
	}
	if u.basePath != "" {
		report("base path", settingService.SetBasePath(u.basePath))
	}
	if u.sessionMaxAge > 0 {
		report("session max age", settingService.SetSessionMaxAge(u.sessionMaxAge))
	}
	if u.origins != "" {
		report("allowed origins", settingService.SetAllowOrigins(strings.Split(u.origins, ",")))
	}
	if u.domain != "" {
		report("web domain", settingService.SetWebDomain(u.domain))
	}
	if u.certFile != "" || u.keyFile != "" {
		report("certificate", settingService.SetCert(u.certFile, u.keyFile))
	}
}

func setAdmin(account, password string) {
	if !openDB() {
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	id, err := userService.SetAdmin(account, password)
	if err != nil {
		fmt.Println("set admin failed:", err)
		return
	}
	fmt.Printf("account %s (id %d) is now an administrator\n", account, id)
}

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Println("load .env failed:", err)
	}

	var rootCmd = &cobra.Command{
		Use:     config.GetName(),
		Version: config.GetVersion(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			var u settingUpdate
			u.port, _ = cmd.Flags().GetInt("port")
			u.basePath, _ = cmd.Flags().GetString("basePath")
			u.sessionMaxAge, _ = cmd.Flags().GetInt("sessionMaxAge")
			u.origins, _ = cmd.Flags().GetString("origins")
			u.domain, _ = cmd.Flags().GetString("domain")
			u.certFile, _ = cmd.Flags().GetString("certFile")
			u.keyFile, _ = cmd.Flags().GetString("keyFile")
			updateSetting(u)
		},
	}

	updateCmd.Flags().Int("port", 0, "set web port")
	updateCmd.Flags().String("basePath", "", "set base path of the API")
	updateCmd.Flags().Int("sessionMaxAge", 0, "set session lifetime in minutes")
	updateCmd.Flags().String("origins", "", "set comma separated CORS origins")
	updateCmd.Flags().String("domain", "", "only answer requests for this host")
	updateCmd.Flags().String("certFile", "", "set TLS certificate file")
	updateCmd.Flags().String("keyFile", "", "set TLS key file")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)

	var account, password string
	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Grant the administrator role, creating the account if needed",
		Run: func(cmd *cobra.Command, args []string) {
			setAdmin(account, password)
		},
	}
	adminCmd.Flags().StringVar(&account, "account", "", "account to promote")
	adminCmd.Flags().StringVar(&password, "password", "", "password used when the account is created")
	_ = adminCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(runCmd, settingCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
