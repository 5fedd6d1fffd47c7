package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs holds statically configured jobs. Built-in jobs register
// themselves through cron.Register from their own package init; entries
// here are for one-off wiring without touching the registry.
var CronJobs = map[string]CronJob{
	// Add more jobs here
}
