package domain

// ImageURLPrefix is where artwork images are served from
const ImageURLPrefix = "/static/uploads/artworks/"

// Artwork Model
type Artwork struct {
	ID        uint    `gorm:"primaryKey"`             // Primary key
	Title     string  `gorm:"size:100;not null"`      // Artwork title
	Price     int     `gorm:"not null"`               // Listed price
	Category  string  `gorm:"size:50"`                // Free text category
	Artist    string  `gorm:"size:100"`               // Creator name
	Owner     string  `gorm:"size:100"`               // Current owner, artist until bought
	ImageFile string  `gorm:"size:200"`               // Filename in the artworks folder
	IsSold    bool    `gorm:"not null;default:false"` // Set once purchased
	Sales     int     `gorm:"not null;default:0"`     // Number of purchases
	Caption   string  `gorm:"type:text"`              // Seller caption
	SlipFile  *string `gorm:"size:200"`               // Filename in the slips folder, nil until bought
}

// ImageURL returns the public path of the artwork image
func (a *Artwork) ImageURL() string {
	return ImageURLPrefix + a.ImageFile
}
