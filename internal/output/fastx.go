// internal/output/fastx.go
package output

// AppendFASTA appends a two-line FASTA record.
func AppendFASTA(buf []byte, header string, seq []byte) []byte {
	buf = append(buf, '>')
	buf = append(buf, header...)
	buf = append(buf, '\n')
	buf = append(buf, seq...)
	return append(buf, '\n')
}

// AppendFASTQ appends a four-line FASTQ record with an empty '+' line.
func AppendFASTQ(buf []byte, header string, seq, qual []byte) []byte {
	buf = append(buf, '@')
	buf = append(buf, header...)
	buf = append(buf, '\n')
	buf = append(buf, seq...)
	buf = append(buf, "\n+\n"...)
	buf = append(buf, qual...)
	return append(buf, '\n')
}
