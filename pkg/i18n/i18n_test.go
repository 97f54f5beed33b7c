package i18n

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c, err := New("en")
		So(err, ShouldBeNil)

		Convey("Then every locale file is loaded", func() {
			So(c.Tags(), ShouldHaveLength, 3)
			So(c.Tags(), ShouldContain, "en")
			So(c.Tags(), ShouldContain, "zh")
			So(c.Tags(), ShouldContain, "ms")
		})

		Convey("When rendering the English voice feedback", func() {
			out := c.T("en", MsgVoiceCalling, map[string]interface{}{"Name": "Wife"})

			Convey("Then the template is filled", func() {
				So(out, ShouldEqual, "Calling Wife...")
			})
		})

		Convey("When rendering the announcement in Malay", func() {
			out := c.T("ms", MsgAlertAnnouncement, map[string]interface{}{
				"Name": "John Rider", "Severity": "High", "Status": "x",
			})

			Convey("Then the Malay text is used", func() {
				So(out, ShouldStartWith, "AMARAN KECEMASAN.")
				So(out, ShouldContainSubstring, "John Rider")
			})
		})

		Convey("When asking for an unknown key", func() {
			_, lerr := c.Localize("en", "does.not.exist", nil)

			Convey("Then ErrMissingMessage is returned and T falls back to the key", func() {
				So(errors.Is(lerr, ErrMissingMessage), ShouldBeTrue)
				So(c.T("en", "does.not.exist", nil), ShouldEqual, "does.not.exist")
			})
		})

		Convey("When reading keyword sets", func() {
			Convey("Then the per-language sets are split on the separator", func() {
				So(c.Keywords("zh", MsgKeywordsCall), ShouldResemble, []string{"打给", "打电话给"})
				So(c.Keywords("ms", MsgKeywordsCancel), ShouldResemble, []string{"batal"})
			})

			Convey("Then the merged set covers every language once", func() {
				all := c.AllKeywords(MsgKeywordsCancel)
				So(all, ShouldHaveLength, 3)
				So(all, ShouldContain, "cancel")
				So(all, ShouldContain, "取消")
				So(all, ShouldContain, "batal")
			})
		})
	})

	Convey("Given an invalid default language", t, func() {
		_, err := New("not a tag!")

		Convey("Then construction fails", func() {
			So(errors.Is(err, ErrUnknownLanguage), ShouldBeTrue)
		})
	})
}
