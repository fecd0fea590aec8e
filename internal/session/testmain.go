package session

import "context"

// TestingM is satisfied by *testing.M
type TestingM interface {
	Run() int
}

// Main wraps m.Run in a session for use from TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(session.Main(m, s))
//	}
func Main(m TestingM, s *Session) int {
	code := 0
	err := s.Run(context.Background(), func(context.Context) error {
		code = m.Run()
		return nil
	})
	if err != nil {
		s.logger.Error(err)
		if code == 0 {
			code = 1
		}
	}
	if err := s.Close(); err != nil {
		s.logger.Warnf("error removing %s: %v", s.workDir, err)
	}
	return code
}
