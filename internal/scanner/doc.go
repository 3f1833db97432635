// Package scanner splits interpolation templates into ordered literal and
// expression segments.
//
// Two delimiter conventions are supported: {expr} and ${expr}. The scan is
// brace-aware and quote-aware, so nested braces and string literals inside a
// slot never terminate it early. Escaped double braces ({{ and }}) survive
// evaluation as sentinel bytes and are restored by Unescape in the final
// output pass.
//
// Example usage:
//
//	segments := scanner.Scan("total: {amount,12:N2}", scanner.ModeBrace)
//	for _, seg := range segments {
//	    if seg.Kind == scanner.SegmentExpression {
//	        d := seg.Descriptor
//	        // d.Base = "amount", d.Alignment = 12, d.Format = "N2"
//	    }
//	}
package scanner
