package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard fields — HTTP

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// ClientIP is the remote address as seen by the validator, the same value
// checked against API-key allow-lists.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// Standard fields — domain

func AccountID(v string) zap.Field {
	return zap.String("account_id", v)
}

func KeyID(v string) zap.Field {
	return zap.String("key_id", v)
}

func LicenseID(v string) zap.Field {
	return zap.String("license_id", v)
}

func DeviceID(v string) zap.Field {
	return zap.String("device_id", v)
}

func ActivationID(v string) zap.Field {
	return zap.String("activation_id", v)
}

func ProductID(v string) zap.Field {
	return zap.String("product_id", v)
}

// Standard fields — system

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer identifies the architectural layer (handler, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

func Detail(v string) zap.Field {
	return zap.String("detail", v)
}

func Count(v int) zap.Field {
	return zap.Int("count", v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}
