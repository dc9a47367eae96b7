package editor

import (
	"graphql-grafana-plugin/pkg/models"
)

// OperationNamesEqual reports whether two operation names refer to the
// same logical operation. An unset name is carried as the empty string,
// so "" on either side compares equal to "" on the other and
// reconciliation does not churn between absent and empty.
func OperationNamesEqual(a, b string) bool {
	return a == b
}

// ReconcileOperationName synchronizes the query's operation name with the
// operation the document editor currently considers active. A nil
// observed value means the editor has not determined one yet and produces
// no update. The result is idempotent: once the names match, changed is
// false and the input is returned unmodified.
func ReconcileOperationName(q models.QueryModel, observed *string) (models.QueryModel, bool) {
	if observed == nil {
		return q, false
	}
	if OperationNamesEqual(q.OperationName, *observed) {
		return q, false
	}
	out := q
	out.OperationName = *observed
	return out, true
}
