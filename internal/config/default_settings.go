package config

import "github.com/tauraamui/panoexport/pkg/configdef"

type defaultSettingKey uint

const (
	ENGINE          defaultSettingKey = 0x0
	OUTPUT          defaultSettingKey = 0x1
	FORMAT          defaultSettingKey = 0x2
	COLORPROCESSING defaultSettingKey = 0x3
	BLENDINGWIDTH   defaultSettingKey = 0x4
)

var defaultSettings = map[defaultSettingKey]interface{}{
	ENGINE:          configdef.DefaultEngine,
	OUTPUT:          configdef.DefaultOutput,
	FORMAT:          "jpg",
	COLORPROCESSING: "hq",
	BLENDINGWIDTH:   configdef.DefaultBlendingWidth,
}
