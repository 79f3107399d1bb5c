package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
)

// RequestLogger logs one structured line per request through zap.  Bearer
// tokens and query strings are never logged: the video view response and
// playback URLs carry credentials.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogRoutePath: true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("route", v.RoutePath),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency),
                zap.String("remote_ip", v.RemoteIP),
                zap.String("request_id", v.RequestID),
                zap.String("user_id", userID(c)),
            }
            if v.Error != nil {
                log.Error("request", append(fields, zap.Error(v.Error))...)
                return nil
            }
            log.Info("request", fields...)
            return nil
        },
    })
}
