package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roomcast/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	defaultRoomSize = configVar[int]{
		envKey:       "SERVER_DEFAULT_ROOM_SIZE",
		flagKey:      "default-room-size",
		defaultValue: 10,
	}
	roomSizeCap = configVar[int]{
		envKey:       "SERVER_ROOM_SIZE_CAP",
		flagKey:      "room-size-cap",
		defaultValue: 20,
	}
	cleanupInterval = configVar[time.Duration]{
		envKey:       "SERVER_CLEANUP_INTERVAL",
		flagKey:      "cleanup-interval",
		defaultValue: 4 * time.Minute,
	}
	gracePeriod = configVar[time.Duration]{
		envKey:       "SERVER_GRACE_PERIOD",
		flagKey:      "grace-period",
		defaultValue: 3 * time.Minute,
	}
	probeTimeout = configVar[time.Duration]{
		envKey:       "SERVER_PROBE_TIMEOUT",
		flagKey:      "probe-timeout",
		defaultValue: 5 * time.Second,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Server secret granting admin rights")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(defaultRoomSize.flagKey, defaultRoomSize.defaultValue, "Default maximum number of members in a room")
	pflag.Int(roomSizeCap.flagKey, roomSizeCap.defaultValue, "Upper bound a host can raise the room size to")
	pflag.Duration(cleanupInterval.flagKey, cleanupInterval.defaultValue, "Interval between idle room sweeps")
	pflag.Duration(gracePeriod.flagKey, gracePeriod.defaultValue, "How long an empty room survives before deletion")
	pflag.Duration(probeTimeout.flagKey, probeTimeout.defaultValue, "How long to wait for the host's player snapshot")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(defaultRoomSize.flagKey, defaultRoomSize.envKey)
	viper.BindEnv(roomSizeCap.flagKey, roomSizeCap.envKey)
	viper.BindEnv(cleanupInterval.flagKey, cleanupInterval.envKey)
	viper.BindEnv(gracePeriod.flagKey, gracePeriod.envKey)
	viper.BindEnv(probeTimeout.flagKey, probeTimeout.envKey)

	viper.SetDefault(secret.flagKey, secret.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(defaultRoomSize.flagKey, defaultRoomSize.defaultValue)
	viper.SetDefault(roomSizeCap.flagKey, roomSizeCap.defaultValue)
	viper.SetDefault(cleanupInterval.flagKey, cleanupInterval.defaultValue)
	viper.SetDefault(gracePeriod.flagKey, gracePeriod.defaultValue)
	viper.SetDefault(probeTimeout.flagKey, probeTimeout.defaultValue)

	config := &app.AppConfig{
		Secret:          viper.GetString(secret.flagKey),
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		DefaultRoomSize: viper.GetInt(defaultRoomSize.flagKey),
		RoomSizeCap:     viper.GetInt(roomSizeCap.flagKey),
		CleanupInterval: viper.GetDuration(cleanupInterval.flagKey),
		GracePeriod:     viper.GetDuration(gracePeriod.flagKey),
		ProbeTimeout:    viper.GetDuration(probeTimeout.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
