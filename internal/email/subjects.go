package email

const subjectAllocationFmt = "New booking for operations: %s (%s)"
