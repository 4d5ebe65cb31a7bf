package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rabbitstream-io/rabbitstream/pkg/rslog"
	"github.com/rabbitstream-io/rabbitstream/pkg/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "rs",
		Short: "rabbitstream, a client for the RabbitMQ Stream protocol.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// RSContext carries the settings shared by every subcommand.
type RSContext struct {
	vp *viper.Viper
}

func (r *RSContext) dial() (*stream.Client, error) {
	initLogger(r.vp)
	return stream.Dial(r.vp.GetString("addr"),
		stream.WithCredentials(r.vp.GetString("username"), r.vp.GetString("password")),
		stream.WithVhost(r.vp.GetString("vhost")),
		stream.WithRequestTimeout(r.vp.GetDuration("timeout")),
	)
}

func (r *RSContext) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.vp.GetDuration("timeout"))
}

func initLogger(vp *viper.Viper) {
	logOpts := rslog.NewOptions()
	logOpts.LogDir = vp.GetString("logDir")
	if vp.GetBool("debug") {
		logOpts.Level = zapcore.DebugLevel
	} else {
		logOpts.Level = zapcore.WarnLevel
	}
	rslog.Configure(logOpts)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().String("addr", "127.0.0.1:5552", "broker address")
	rootCmd.PersistentFlags().String("username", "guest", "username")
	rootCmd.PersistentFlags().String("password", "guest", "password")
	rootCmd.PersistentFlags().String("vhost", "/", "virtual host")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")
	rootCmd.PersistentFlags().String("logDir", "./logs", "log directory")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")

	rootCmd.AddCommand(newCreateCMD(rsCtx).CMD())
	rootCmd.AddCommand(newDeleteCMD(rsCtx).CMD())
	rootCmd.AddCommand(newStatsCMD(rsCtx).CMD())
	rootCmd.AddCommand(newOffsetCMD(rsCtx).CMD())
	rootCmd.AddCommand(newRouteCMD(rsCtx).CMD())
}

var rsCtx = &RSContext{vp: viper.New()}

func initConfig() {
	vp := rsCtx.vp
	if cfgFile != "" {
		vp.SetConfigFile(cfgFile)
		if err := vp.ReadInConfig(); err == nil {
			fmt.Println("Using config file:", vp.ConfigFileUsed())
		}
	}

	vp.SetEnvPrefix("rs")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	_ = vp.BindPFlags(rootCmd.PersistentFlags())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
