// Package title analyzes a patent's ordered transaction history and
// classifies its chain of title as complete, broken, or encumbered.
package title
