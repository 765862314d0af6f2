package model

import "time"

type InputImage struct {
	Id                  int       `json:"id" gorm:"primaryKey"`
	Path                string    `json:"path" gorm:"column:path;type:varchar(255)"`
	StorageSupplierName string    `json:"storage_supplier_name" gorm:"column:storage_supplier_name;type:varchar(20)"`
	Key                 string    `json:"key" gorm:"column:key;type:varchar(100)"`
	URL                 string    `json:"url" gorm:"column:url;type:varchar(500)"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

type OutputImage struct {
	Id                  int       `json:"id" gorm:"primaryKey"`
	Path                string    `json:"path" gorm:"column:path;type:varchar(255)"`
	StorageSupplierName string    `json:"storage_supplier_name" gorm:"column:storage_supplier_name;type:varchar(20)"`
	Key                 string    `json:"key" gorm:"column:key;type:varchar(100)"`
	URL                 string    `json:"url" gorm:"column:url;type:varchar(500)"`
	Type                string    `json:"type" gorm:"column:type;type:enum('normal', 'compressed')"`
	CompressionRatio    string    `json:"compression_ratio" gorm:"column:compression_ratio;type:decimal(5,2)"`
	ServerFilename      string    `json:"server_filename" gorm:"column:server_filename;type:varchar(255)"`
	ServerName          string    `json:"server_name" gorm:"column:server_name;type:varchar(50)"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

type OutputImageType string

const (
	OutputImageTypeNormal     OutputImageType = "normal"
	OutputImageTypeCompressed OutputImageType = "compressed"
)

func (t OutputImageType) String() string {
	return string(t)
}
