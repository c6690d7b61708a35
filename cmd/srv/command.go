package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "spdm"
	s.app.Usage = "Rewards backend of the SPDM client"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the toml config file",
			EnvVars: []string{"SPDM_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the http api. The websocket hub runs in the same process when kafka is not configured.`,
		},
		{
			Action:      s.startRealtime,
			Name:        "realtime",
			Usage:       "Start service realtime",
			Category:    "Websocket",
			Description: `Used to push events consumed from kafka to websocket clients.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to reset reward ledgers, clean up presence and lift expired bans.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Apply only this version, even if it was applied before",
				},
			},
			Description: `Used to apply every database migration which was not applied yet.`,
		},
	}
}
