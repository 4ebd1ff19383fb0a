// Package assistant orchestrates question answering over the medical
// corpus: retrieve context, judge whether it is strong enough on its own,
// augment from the web when it is not, and hand the result to the answer
// generator. It also builds cross-document insight summaries for uploaded
// medical reports.
package assistant
