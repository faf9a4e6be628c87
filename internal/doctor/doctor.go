package doctor

// Doctor manages and executes health checks.
type Doctor struct {
	checks []Check
}

// NewDoctor creates a new Doctor with no registered checks.
func NewDoctor() *Doctor {
	return &Doctor{}
}

// Register adds checks to the doctor's check list.
func (d *Doctor) Register(checks ...Check) {
	d.checks = append(d.checks, checks...)
}

// Checks returns the list of registered checks.
func (d *Doctor) Checks() []Check {
	return d.checks
}

// Run executes all registered checks and returns a report.
func (d *Doctor) Run(ctx *CheckContext) *Report {
	report := NewReport()
	for _, check := range d.checks {
		report.Add(d.runOne(check, ctx))
	}
	return report
}

// Fix runs all checks with auto-fix enabled. A failed fixable check gets one
// fix attempt and is then re-run to verify.
func (d *Doctor) Fix(ctx *CheckContext) *Report {
	report := NewReport()
	for _, check := range d.checks {
		result := d.runOne(check, ctx)

		if result.Status != StatusOK && check.CanFix() {
			if err := check.Fix(ctx); err != nil {
				result.Details = append(result.Details, "Fix failed: "+err.Error())
			} else {
				result = d.runOne(check, ctx)
				if result.Status == StatusOK {
					result.Message += " (fixed)"
				}
			}
		}
		report.Add(result)
	}
	return report
}

func (d *Doctor) runOne(check Check, ctx *CheckContext) *CheckResult {
	result := check.Run(ctx)
	if result.Name == "" {
		result.Name = check.Name()
	}
	return result
}

// BaseCheck provides a base implementation for checks without auto-fix.
type BaseCheck struct {
	CheckName string
}

// Name returns the check name.
func (b *BaseCheck) Name() string { return b.CheckName }

// CanFix returns false by default.
func (b *BaseCheck) CanFix() bool { return false }

// Fix returns an error indicating this check cannot be auto-fixed.
func (b *BaseCheck) Fix(ctx *CheckContext) error { return ErrCannotFix }

// FixableCheck provides a base implementation for checks that support
// auto-fix. Embed it and implement Fix.
type FixableCheck struct {
	BaseCheck
}

// CanFix returns true for fixable checks.
func (f *FixableCheck) CanFix() bool { return true }
