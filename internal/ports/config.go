package ports

import "debforge/internal/types"

type ConversionConfigPort interface {
	Load(path string) (types.ConversionConfig, error)
}
