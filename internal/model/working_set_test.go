package model_test

import (
	"basegraph.app/lastseen/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Member", func() {
	DescribeTable("Active",
		func(m model.Member, want bool) {
			Expect(m.Active()).To(Equal(want))
		},
		Entry("regular member", model.Member{ID: "U1"}, true),
		Entry("deleted member", model.Member{ID: "U2", Deleted: true}, false),
		Entry("bot", model.Member{ID: "B1", IsBot: true}, false),
		Entry("slackbot", model.Member{ID: model.SlackbotID}, false),
	)
})

var _ = Describe("WorkingSet", func() {
	var ws *model.WorkingSet

	BeforeEach(func() {
		ws = model.NewWorkingSet([]model.Member{
			{ID: "U3", Name: "carol"},
			{ID: "U1", Name: "alice"},
			{ID: "U2", Name: "bob"},
			{ID: "U1", Name: "alice-duplicate"},
		})
	})

	It("keeps directory order and drops duplicate IDs", func() {
		Expect(ws.Len()).To(Equal(3))
		names := []string{}
		for _, m := range ws.Members() {
			names = append(names, m.Name)
		}
		Expect(names).To(Equal([]string{"carol", "alice", "bob"}))
	})

	It("only raises LastLogin", func() {
		Expect(ws.ObserveLogin("U1", 200)).To(BeTrue())
		Expect(ws.ObserveLogin("U1", 100)).To(BeFalse())
		Expect(ws.ObserveLogin("U1", 200)).To(BeFalse())

		m, ok := ws.Get("U1")
		Expect(ok).To(BeTrue())
		Expect(m.LastLogin).To(Equal(int64(200)))
	})

	It("ignores unknown IDs", func() {
		Expect(ws.ObserveLogin("U404", 100)).To(BeFalse())
		Expect(ws.Contains("U404")).To(BeFalse())
		Expect(ws.Len()).To(Equal(3))
	})

	It("hands out copies", func() {
		members := ws.Members()
		members[0].LastLogin = 999

		m, _ := ws.Get(members[0].ID)
		Expect(m.LastLogin).To(Equal(model.NoLogin))
	})

	It("counts members with logins", func() {
		Expect(ws.WithLogins()).To(Equal(0))
		ws.ObserveLogin("U2", 10)
		Expect(ws.WithLogins()).To(Equal(1))
	})
})
