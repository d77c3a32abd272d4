package models

import "gorm.io/gorm"

func init() {
	registerForAutomigration(&FrameRecord{})
}

// FrameRecord is the outcome of a single frame within a run. Stage is
// empty for frames exported without failures.
type FrameRecord struct {
	gorm.Model
	RunUUID  string `gorm:"index"`
	Frame    uint
	Skipped  bool
	Stage    string
	Written  int
	Failures int
}
