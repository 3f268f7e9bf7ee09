package store_test

import (
	"context"
	"time"

	st "github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("entity stores", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
		ctx = context.TODO()
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM coach_responsibilities;")
		gormdb.Exec("DELETE FROM university_jobs;")
		gormdb.Exec("DELETE FROM coaches;")
		gormdb.Exec("DELETE FROM programs;")
		gormdb.Exec("DELETE FROM university_divisions;")
		gormdb.Exec("DELETE FROM university_conferences;")
		gormdb.Exec("DELETE FROM universities;")
		gormdb.Exec("DELETE FROM divisions;")
		gormdb.Exec("DELETE FROM conferences;")
	})

	Context("university", func() {
		It("distinguishes a missing state from a stored one", func() {
			_, err := s.University().Create(ctx, model.University{Name: "Alpha", State: ptr("OH")})
			Expect(err).To(BeNil())

			_, err = s.University().FindByNameState(ctx, "Alpha", nil)
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			u, err := s.University().FindByNameState(ctx, "Alpha", ptr("OH"))
			Expect(err).To(BeNil())
			Expect(*u.State).To(Equal("OH"))
		})

		It("updates only the given columns", func() {
			u, err := s.University().Create(ctx, model.University{Name: "Alpha", City: ptr("Dayton"), AverageGPA: ptr(3.4)})
			Expect(err).To(BeNil())

			Expect(s.University().Update(ctx, u.ID, model.University{Enrollment: ptr(1200)}.Changes())).To(Succeed())

			got, err := s.University().FindByNameState(ctx, "Alpha", nil)
			Expect(err).To(BeNil())
			Expect(*got.City).To(Equal("Dayton"))
			Expect(*got.AverageGPA).To(Equal(3.4))
			Expect(*got.Enrollment).To(Equal(1200))
		})

		It("reports a duplicate name and state", func() {
			_, err := s.University().Create(ctx, model.University{Name: "Alpha", State: ptr("OH")})
			Expect(err).To(BeNil())

			_, err = s.University().Create(ctx, model.University{Name: "Alpha", State: ptr("OH")})
			Expect(err).To(MatchError(st.ErrDuplicateKey))

			v, ok := st.AsViolation(err)
			Expect(ok).To(BeTrue())
			Expect(v.Kind).To(Equal(st.UniqueViolation))
			Expect(v.Constraint).To(ContainSubstring("state"))
		})
	})

	Context("affiliation", func() {
		It("links a division once", func() {
			u, err := s.University().Create(ctx, model.University{Name: "Alpha"})
			Expect(err).To(BeNil())
			Expect(gormdb.Create(&model.Division{Name: "NCAA Division I"}).Error).To(BeNil())

			d, err := s.Affiliation().DivisionByName(ctx, "NCAA Division I")
			Expect(err).To(BeNil())

			_, err = s.Affiliation().OpenDivisionLink(ctx, u.ID, d.ID)
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			Expect(s.Affiliation().LinkDivision(ctx, u.ID, d.ID, time.Now())).To(Succeed())

			link, err := s.Affiliation().OpenDivisionLink(ctx, u.ID, d.ID)
			Expect(err).To(BeNil())
			Expect(link.EndDate).To(BeNil())

			err = s.Affiliation().LinkDivision(ctx, u.ID, d.ID, time.Now())
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		It("finds conferences by exact name", func() {
			Expect(gormdb.Create(&model.Conference{Name: "Big Ten", GoverningBodyID: 1}).Error).To(BeNil())

			_, err := s.Affiliation().ConferenceByName(ctx, "big ten")
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			c, err := s.Affiliation().ConferenceByName(ctx, "Big Ten")
			Expect(err).To(BeNil())

			u, err := s.University().Create(ctx, model.University{Name: "Alpha"})
			Expect(err).To(BeNil())
			Expect(s.Affiliation().LinkConference(ctx, u.ID, c.ID, time.Now())).To(Succeed())
			_, err = s.Affiliation().OpenConferenceLink(ctx, u.ID, c.ID)
			Expect(err).To(BeNil())
		})
	})

	Context("coach", func() {
		var (
			alpha, beta *model.University
			program     *model.Program
		)

		BeforeEach(func() {
			var err error
			alpha, err = s.University().Create(ctx, model.University{Name: "Alpha"})
			Expect(err).To(BeNil())
			beta, err = s.University().Create(ctx, model.University{Name: "Beta"})
			Expect(err).To(BeNil())
			program, err = s.Program().Create(ctx, model.Program{UniversityID: alpha.ID, Gender: "women"})
			Expect(err).To(BeNil())
		})

		It("finds a coach by email and by job work email", func() {
			c, err := s.Coach().Create(ctx, model.Coach{FirstName: "Ann", LastName: "Lee", Email: ptr("ann@alpha.edu")})
			Expect(err).To(BeNil())
			_, err = s.UniversityJob().Create(ctx, model.UniversityJob{
				CoachID:      c.ID,
				UniversityID: alpha.ID,
				ProgramID:    &program.ID,
				Title:        "Coach",
				WorkEmail:    ptr("coach.lee@alpha.edu"),
				StartDate:    time.Now(),
			})
			Expect(err).To(BeNil())

			byEmail, err := s.Coach().GetByEmail(ctx, "ann@alpha.edu")
			Expect(err).To(BeNil())
			Expect(byEmail.ID).To(Equal(c.ID))

			byWork, err := s.Coach().GetByJobWorkEmail(ctx, "coach.lee@alpha.edu")
			Expect(err).To(BeNil())
			Expect(byWork.ID).To(Equal(c.ID))

			open, err := s.Coach().ListWithOpenJob(ctx, alpha.ID, program.ID)
			Expect(err).To(BeNil())
			Expect(open).To(HaveLen(1))
		})

		It("reports a missing required field", func() {
			err := gormdb.Exec("INSERT INTO coaches (created_at, updated_at, first_name) VALUES (?, ?, ?)", time.Now(), time.Now(), "Ann").Error
			Expect(err).ToNot(BeNil())

			v, ok := st.AsViolation(err)
			Expect(ok).To(BeTrue())
			Expect(v.Kind).To(Equal(st.NotNullViolation))
			Expect(v.Column).To(Equal("last_name"))
		})

		It("closes open jobs at other universities only", func() {
			c, err := s.Coach().Create(ctx, model.Coach{FirstName: "Ann", LastName: "Lee"})
			Expect(err).To(BeNil())
			_, err = s.UniversityJob().Create(ctx, model.UniversityJob{CoachID: c.ID, UniversityID: alpha.ID, Title: "Coach", StartDate: time.Now()})
			Expect(err).To(BeNil())
			_, err = s.UniversityJob().Create(ctx, model.UniversityJob{CoachID: c.ID, UniversityID: beta.ID, Title: "Coach", StartDate: time.Now()})
			Expect(err).To(BeNil())

			closed, err := s.UniversityJob().CloseOpenElsewhere(ctx, c.ID, beta.ID, time.Now())
			Expect(err).To(BeNil())
			Expect(closed).To(Equal(int64(1)))

			var open []model.UniversityJob
			Expect(gormdb.Where("coach_id = ? AND end_date IS NULL", c.ID).Find(&open).Error).To(BeNil())
			Expect(open).To(HaveLen(1))
			Expect(open[0].UniversityID).To(Equal(beta.ID))
		})

		It("refuses a second open job at the same university", func() {
			c, err := s.Coach().Create(ctx, model.Coach{FirstName: "Ann", LastName: "Lee"})
			Expect(err).To(BeNil())
			_, err = s.UniversityJob().Create(ctx, model.UniversityJob{CoachID: c.ID, UniversityID: alpha.ID, Title: "Coach", StartDate: time.Now()})
			Expect(err).To(BeNil())

			_, err = s.UniversityJob().Create(ctx, model.UniversityJob{CoachID: c.ID, UniversityID: alpha.ID, Title: "Coach", StartDate: time.Now()})
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})
	})

	Context("responsibility", func() {
		It("replaces the responsibilities of a job", func() {
			first := []model.CoachResponsibility{{EventGroup: "throws"}, {EventGroup: "jumps"}}
			Expect(s.Responsibility().Replace(ctx, 42, first)).To(Succeed())

			second := []model.CoachResponsibility{{EventGroup: "sprints", EventID: ptr(uint(7))}}
			Expect(s.Responsibility().Replace(ctx, 42, second)).To(Succeed())

			var rs []model.CoachResponsibility
			Expect(gormdb.Where("job_id = ?", 42).Order("id").Find(&rs).Error).To(BeNil())
			Expect(rs).To(HaveLen(1))
			Expect(rs[0].EventGroup).To(Equal("sprints"))
			Expect(*rs[0].EventID).To(Equal(uint(7)))
		})
	})
})
