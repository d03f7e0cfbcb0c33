package icon

import (
	"testing"

	"github.com/anisan-cli/vidresolve/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the registered icons", t, func() {
		Convey("Then every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("When the variant is unknown", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Lua), ShouldBeEmpty)
		})

		Convey("When the icon is unknown", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(Icon(999)), ShouldBeEmpty)
		})
	})
}
