package srv

type Srv struct {
	hub *Hub
}

type ApplyFunc func(*Srv)

func ApplyHub(cfg HubConfig) ApplyFunc {
	return func(s *Srv) {
		s.hub = NewHub(cfg)
	}
}

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Srv) Hub() *Hub {
	return s.hub
}
