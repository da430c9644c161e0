package models

import (
	"time"
)

// Checkin is one check-in row. The record key is the primary key; keys are
// generated globally unique, ownership is a separate indexed column.
type Checkin struct {
	ID        string `json:"id" gorm:"primaryKey;type:text"`
	AuthorDid string `json:"authorDid" gorm:"type:text;index"`
	Cid       string `json:"cid" gorm:"type:text"`

	Text string `json:"text" gorm:"type:text"`
	// CreatedAt keeps the client's original timestamp string; feed cursors
	// compare it lexicographically.
	CreatedAt     string  `json:"createdAt" gorm:"type:text;index"`
	Locations     *string `json:"locations" gorm:"type:text"`
	Category      *string `json:"category" gorm:"type:text"`
	CategoryGroup *string `json:"categoryGroup" gorm:"type:text"`
	CategoryIcon  *string `json:"categoryIcon" gorm:"type:text"`

	CDate time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type UserSettings struct {
	Did             string    `json:"did" gorm:"primaryKey;type:text"`
	EnableFeedPosts bool      `json:"enableFeedPosts" gorm:"type:boolean;not null;default:true"`
	MDate           time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
