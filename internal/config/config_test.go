package config_test

import (
	"testing"

	"github.com/okian/deliberation/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.PicklistMax, convey.ShouldEqual, 12)
			convey.So(cfg.PicklistMultiplier, convey.ShouldEqual, 0.35)
			convey.So(cfg.ExemptAwards, convey.ShouldResemble, []string{"robot-performance", "advancement"})
			convey.So(cfg.AutoAssignedAward, convey.ShouldEqual, "excellence-in-engineering")
			convey.So(cfg.ChampionsCandidates, convey.ShouldEqual, 0)
		})
	})
}
