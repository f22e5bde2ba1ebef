package entity

// Re-export common types from the common package.

import (
	"characterstory/internal/entity/common"
)

type StringArray = common.StringArray
