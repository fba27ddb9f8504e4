package main

import (
	"log"

	"github.com/dushixiang/aurum/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "aurum",
	Short: "Aurum - 金价与财经新闻聚合服务",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env 不存在时忽略，已有的环境变量优先
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("skip env file %s: %v", envFile, err)
		}
		return internal.Run(configFile)
	},
}

func init() {
	// 全局配置文件标志
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "环境变量文件路径")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
