package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/api"
	adminapi "github.com/Glowcast-Media/glowcast/internal/http/api/admin/endpoints"
	deviceapi "github.com/Glowcast-Media/glowcast/internal/http/api/device/endpoints"
	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	webapi "github.com/Glowcast-Media/glowcast/internal/http/api/web/endpoints"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, notifier *middleware.Notifier) {
	// CORS: the web player is served from the dashboard's origin
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	playerConfig := devicepackets.PlayerConfig{
		LoopIntervalSeconds:   env.HeartbeatIntervalSeconds,
		ReportIntervalSeconds: env.ReportIntervalSeconds,
	}
	deviceController := deviceapi.NewDeviceController(store, env.SecretKey, playerConfig)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.AuthSessionModule(env.SecretKey, store),
		adminapi.ScreenModule(store, notifier),
		adminapi.BookingModule(store, notifier, deviceController),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/device",
	},
		deviceapi.DeviceModuleFromController(deviceController),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/web",
	},
		webapi.WebPlayerModule(store),
	)
}
