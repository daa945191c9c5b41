package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrNotAuthenticated   = errors.New("sesión no iniciada")
	ErrScanInFlight       = errors.New("escaneo en curso")
	ErrCameraUnavailable  = errors.New("cámara no disponible")
)
